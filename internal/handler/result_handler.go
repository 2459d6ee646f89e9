package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/notsocj/SmartExam/internal/middleware"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
)

// ResultHandler handles result viewing, admin records, retake grants, and
// CSV export.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ListMine godoc
// GET /api/v1/portal/results
func (h *ResultHandler) ListMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetMine godoc
// GET /api/v1/portal/results/:result_id
// Returns one of the student's own results, question records and telemetry
// included.
func (h *ResultHandler) GetMine(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	resultID, ok := idParam(c, "result_id")
	if !ok {
		return
	}

	res, err := h.resultService.GetForStudent(c.Request.Context(), claims.UserID, resultID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// Get godoc
// GET /api/v1/admin/results/:result_id
func (h *ResultHandler) Get(c *gin.Context) {
	resultID, ok := idParam(c, "result_id")
	if !ok {
		return
	}

	res, err := h.resultService.Get(c.Request.Context(), resultID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

// StudentRecords godoc
// GET /api/v1/admin/records
// Aggregated result history per student.
func (h *ResultHandler) StudentRecords(c *gin.Context) {
	records, err := h.resultService.StudentRecords(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// GrantRetake godoc
// POST /api/v1/admin/results/:result_id/retake
// Lets the student sit the test again; the new result replaces this one.
func (h *ResultHandler) GrantRetake(c *gin.Context) {
	resultID, ok := idParam(c, "result_id")
	if !ok {
		return
	}

	if err := h.resultService.GrantRetake(c.Request.Context(), resultID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "retake granted"})
}

// ExportCSV godoc
// GET /api/v1/admin/tests/:test_id/results/export
// Streams the test's results as a CSV download.
func (h *ResultHandler) ExportCSV(c *gin.Context) {
	testID, ok := idParam(c, "test_id")
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="test_%d_results.csv"`, testID))

	if err := h.resultService.ExportCSV(c.Request.Context(), testID, c.Writer); err != nil {
		// Headers may already be out; the broken CSV is the best signal left.
		_ = c.Error(err)
	}
}
