package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
	"github.com/notsocj/SmartExam/internal/validator"
)

// TestHandler handles admin test and question authoring endpoints.
type TestHandler struct {
	testService *service.TestService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// List godoc
// GET /api/v1/admin/tests
func (h *TestHandler) List(c *gin.Context) {
	tests, err := h.testService.List(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Get godoc
// GET /api/v1/admin/tests/:test_id
func (h *TestHandler) Get(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), testID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Create godoc
// POST /api/v1/admin/tests
func (h *TestHandler) Create(c *gin.Context) {
	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Create(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// Update godoc
// PUT /api/v1/admin/tests/:test_id
func (h *TestHandler) Update(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Update(c.Request.Context(), testID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Delete godoc
// DELETE /api/v1/admin/tests/:test_id
func (h *TestHandler) Delete(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), testID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ListQuestions godoc
// GET /api/v1/admin/tests/:test_id/questions
// Returns questions including correct answers.
func (h *TestHandler) ListQuestions(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	questions, err := h.testService.ListQuestions(c.Request.Context(), testID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestion godoc
// POST /api/v1/admin/tests/:test_id/questions
func (h *TestHandler) CreateQuestion(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	var req model.SaveQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.testService.CreateQuestion(c.Request.Context(), testID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// UpdateQuestion godoc
// PUT /api/v1/admin/tests/:test_id/questions/:question_id
func (h *TestHandler) UpdateQuestion(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}
	questionID, ok := idParam(c, "question_id")
	if !ok {
		return
	}

	var req model.SaveQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.testService.UpdateQuestion(c.Request.Context(), testID, questionID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": q})
}

// DeleteQuestion godoc
// DELETE /api/v1/admin/tests/:test_id/questions/:question_id
func (h *TestHandler) DeleteQuestion(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}
	questionID, ok := idParam(c, "question_id")
	if !ok {
		return
	}

	if err := h.testService.DeleteQuestion(c.Request.Context(), testID, questionID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
