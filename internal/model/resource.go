package model

import "time"

// ResourceType enumerates learning resource kinds.
type ResourceType string

const (
	ResourceTypeMixed    ResourceType = "mixed"
	ResourceTypeVideo    ResourceType = "video"
	ResourceTypeDocument ResourceType = "document"
	ResourceTypePDF      ResourceType = "pdf"
)

// LearningResource is study material students consume between tests.
// File storage/upload is handled outside this service; resources reference
// files already present under the configured resource directory.
type LearningResource struct {
	ID           int            `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	ResourceType ResourceType   `json:"resource_type"`
	CreatedBy    int            `json:"created_by"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Files        []ResourceFile `json:"files,omitempty"`
}

// ResourceFile is one file belonging to a learning resource.
type ResourceFile struct {
	ID               int       `json:"id"`
	ResourceID       int       `json:"resource_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileType         string    `json:"file_type"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type,omitempty"`
	DurationSeconds  *int      `json:"duration_seconds,omitempty"`
	UploadOrder      int       `json:"upload_order"`
	CreatedAt        time.Time `json:"created_at"`
}

// SaveResourceRequest is the payload for creating/updating resource metadata.
type SaveResourceRequest struct {
	Title        string `json:"title" binding:"required,min=2,max=200"`
	Description  string `json:"description" binding:"omitempty,max=2000"`
	ResourceType string `json:"resource_type" binding:"required,oneof=mixed video document pdf"`
	IsActive     *bool  `json:"is_active" binding:"omitempty"`
}

// AddResourceFileRequest registers a file (already present on disk) under a
// resource.
type AddResourceFileRequest struct {
	Filename         string `json:"filename" binding:"required,max=255"`
	OriginalFilename string `json:"original_filename" binding:"required,max=255"`
	FilePath         string `json:"file_path" binding:"required,max=500"`
	FileType         string `json:"file_type" binding:"required,oneof=video pdf document"`
	FileSize         int64  `json:"file_size" binding:"omitempty,min=0"`
	MimeType         string `json:"mime_type" binding:"omitempty,max=100"`
	DurationSeconds  *int   `json:"duration_seconds" binding:"omitempty,min=0"`
	UploadOrder      int    `json:"upload_order" binding:"omitempty,min=0"`
}
