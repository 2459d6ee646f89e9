package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/notsocj/SmartExam/internal/middleware"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
	"github.com/notsocj/SmartExam/internal/validator"
)

// PortalHandler handles the student test-taking endpoints.
type PortalHandler struct {
	testService    *service.TestService
	attemptService *service.AttemptService
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(testService *service.TestService, attemptService *service.AttemptService) *PortalHandler {
	return &PortalHandler{testService: testService, attemptService: attemptService}
}

// ListTests godoc
// GET /api/v1/portal/tests
// Returns all tests with the student's completion status overlaid.
func (h *PortalHandler) ListTests(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	tests, err := h.testService.ListAvailable(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Take godoc
// POST /api/v1/portal/tests/:test_id/take
// Opens (or resumes) an attempt and returns the paper without answers.
func (h *PortalHandler) Take(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	paper, err := h.attemptService.Start(c.Request.Context(), claims.UserID, testID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// ActiveAttempt godoc
// GET /api/v1/portal/attempt
// Returns the student's current attempt, or null when none is active. The
// client uses this after a reload to decide whether to jump back into a
// test.
func (h *PortalHandler) ActiveAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	att, err := h.attemptService.Active(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": att})
}

// Submit godoc
// POST /api/v1/portal/tests/:test_id/submit
// Grades the attempt and returns the durable result.
func (h *PortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	res, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, testID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}
