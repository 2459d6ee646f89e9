package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
	"github.com/notsocj/SmartExam/internal/session"
)

// BlockDuringTest rejects learning-resource requests while the student has
// an active test attempt, pointing the client back into the test. Applied
// to every resource route, raw file serving included, so a second tab
// can't study mid-test.
func BlockDuringTest(attemptService *service.AttemptService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		att, err := attemptService.Active(c.Request.Context(), claims.UserID)
		if err != nil {
			response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}

		decision := session.GuardResourceAccess(att)
		if !decision.Allowed {
			response.AbortFailWithRedirect(c, http.StatusConflict, response.ErrTestLocked,
				fmt.Sprintf("/portal/tests/%d/take", decision.ActiveTestID))
			return
		}

		c.Next()
	}
}
