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

// TelemetryHandler handles in-test client reports: heartbeats, violation
// events, and the closing abandon beacon.
type TelemetryHandler struct {
	attemptService *service.AttemptService
}

// NewTelemetryHandler creates a new TelemetryHandler.
func NewTelemetryHandler(attemptService *service.AttemptService) *TelemetryHandler {
	return &TelemetryHandler{attemptService: attemptService}
}

// Heartbeat godoc
// POST /api/v1/portal/attempt/heartbeat
// Records the client's periodic counter report.
func (h *TelemetryHandler) Heartbeat(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.HeartbeatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	att, err := h.attemptService.Heartbeat(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"status":     "ok",
		"violations": att.SecurityViolations,
	})
}

// ReportViolation godoc
// POST /api/v1/portal/attempt/violation
// Appends one security event to the attempt's log.
func (h *TelemetryHandler) ReportViolation(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	att, err := h.attemptService.RecordViolation(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"status":     "recorded",
		"violations": att.SecurityViolations,
	})
}

// Abandoned godoc
// POST /api/v1/portal/attempt/abandoned
// Fire-and-forget close beacon (navigator.sendBeacon). Always responds 204
// with an empty body: the sender is a closing page that never reads it, and
// a missing attempt is not an error.
func (h *TelemetryHandler) Abandoned(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.Status(http.StatusNoContent)
		return
	}

	// Best-effort parse; sendBeacon payloads can be truncated.
	var req model.AbandonRequest
	_ = c.ShouldBindJSON(&req)

	h.attemptService.Abandon(c.Request.Context(), claims.UserID, &req)
	c.Status(http.StatusNoContent)
}
