package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
)

// idParam parses an integer route parameter, failing the request with
// INVALID_ID when it doesn't parse.
func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// failFromService maps service sentinel errors onto wire error codes.
// Unrecognized errors become a 500.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCompleted)
	case errors.Is(err, service.ErrAttemptInProgress):
		// Send the caller back into the attempt it already has open.
		var active *service.ActiveAttemptError
		if errors.As(err, &active) {
			response.FailWithRedirect(c, http.StatusConflict, response.ErrAttemptInProgress,
				fmt.Sprintf("/portal/tests/%d/take", active.ActiveTestID))
			return
		}
		response.Fail(c, http.StatusConflict, response.ErrAttemptInProgress)
	case errors.Is(err, service.ErrNoActiveAttempt):
		response.Fail(c, http.StatusConflict, response.ErrNoActiveAttempt)
	case errors.Is(err, service.ErrTestIDMismatch):
		response.Fail(c, http.StatusConflict, response.ErrTestIDMismatch)
	case errors.Is(err, service.ErrBadQuestion):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"choices": err.Error()})
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
