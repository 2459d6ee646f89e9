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

// ResourceHandler handles learning resource endpoints. All student routes
// here sit behind the active-attempt guard: none of them are reachable
// while a test is in progress.
type ResourceHandler struct {
	resourceService *service.ResourceService
}

// NewResourceHandler creates a new ResourceHandler.
func NewResourceHandler(resourceService *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

// ─── Student routes ─────────────────────────────────────────────────

// List godoc
// GET /api/v1/resources
func (h *ResourceHandler) List(c *gin.Context) {
	resources, err := h.resourceService.ListActive(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resources": resources})
}

// Get godoc
// GET /api/v1/resources/:resource_id
func (h *ResourceHandler) Get(c *gin.Context) {
	resourceID, ok := idParam(c, "resource_id")
	if !ok {
		return
	}

	lr, err := h.resourceService.Get(c.Request.Context(), resourceID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": lr})
}

// ServeFile godoc
// GET /api/v1/resources/:resource_id/files/:file_id
// Streams the file from disk. Guarded like every other resource route.
func (h *ResourceHandler) ServeFile(c *gin.Context) {
	resourceID, ok := idParam(c, "resource_id")
	if !ok {
		return
	}
	fileID, ok := idParam(c, "file_id")
	if !ok {
		return
	}

	path, f, err := h.resourceService.ResolveFile(c.Request.Context(), resourceID, fileID)
	if err != nil {
		failFromService(c, err)
		return
	}

	if f.MimeType != "" {
		c.Header("Content-Type", f.MimeType)
	}
	c.File(path)
}

// RecordProgress godoc
// POST /api/v1/resources/:resource_id/progress
func (h *ResourceHandler) RecordProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	resourceID, ok := idParam(c, "resource_id")
	if !ok {
		return
	}

	var req model.UpdateProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	p, err := h.resourceService.RecordProgress(c.Request.Context(), claims.UserID, resourceID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": p})
}

// ListProgress godoc
// GET /api/v1/resources/progress
func (h *ResourceHandler) ListProgress(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	progress, err := h.resourceService.ListProgress(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"progress": progress})
}

// ─── Admin routes ───────────────────────────────────────────────────

// AdminList godoc
// GET /api/v1/admin/resources
func (h *ResourceHandler) AdminList(c *gin.Context) {
	resources, err := h.resourceService.ListAll(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resources": resources})
}

// Create godoc
// POST /api/v1/admin/resources
func (h *ResourceHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SaveResourceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lr, err := h.resourceService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"resource": lr})
}

// Update godoc
// PUT /api/v1/admin/resources/:resource_id
func (h *ResourceHandler) Update(c *gin.Context) {
	resourceID, ok := idParam(c, "resource_id")
	if !ok {
		return
	}

	var req model.SaveResourceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lr, err := h.resourceService.Update(c.Request.Context(), resourceID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": lr})
}

// Delete godoc
// DELETE /api/v1/admin/resources/:resource_id
func (h *ResourceHandler) Delete(c *gin.Context) {
	resourceID, ok := idParam(c, "resource_id")
	if !ok {
		return
	}

	if err := h.resourceService.Delete(c.Request.Context(), resourceID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// AddFile godoc
// POST /api/v1/admin/resources/:resource_id/files
func (h *ResourceHandler) AddFile(c *gin.Context) {
	resourceID, ok := idParam(c, "resource_id")
	if !ok {
		return
	}

	var req model.AddResourceFileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	f, err := h.resourceService.AddFile(c.Request.Context(), resourceID, &req)
	if err != nil {
		if err == service.ErrUnsafePath {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"file_path": err.Error()})
			return
		}
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"file": f})
}

// DeleteFile godoc
// DELETE /api/v1/admin/resources/:resource_id/files/:file_id
func (h *ResourceHandler) DeleteFile(c *gin.Context) {
	resourceID, ok := idParam(c, "resource_id")
	if !ok {
		return
	}
	fileID, ok := idParam(c, "file_id")
	if !ok {
		return
	}

	if err := h.resourceService.DeleteFile(c.Request.Context(), resourceID, fileID); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}
