package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/notsocj/SmartExam/internal/config"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/notsocj/SmartExam/internal/repository"
)

// ErrUnsafePath flags a resource file whose stored path escapes the
// configured resource directory.
var ErrUnsafePath = errors.New("resource file path escapes the resource directory")

// ResourceService handles learning resource metadata, file lookup, and
// student progress.
type ResourceService struct {
	cfg          *config.Config
	resourceRepo *repository.ResourceRepository
	progressRepo *repository.ProgressRepository
}

// NewResourceService creates a new ResourceService.
func NewResourceService(cfg *config.Config, resourceRepo *repository.ResourceRepository, progressRepo *repository.ProgressRepository) *ResourceService {
	return &ResourceService{cfg: cfg, resourceRepo: resourceRepo, progressRepo: progressRepo}
}

// ListActive returns active resources (student view).
func (s *ResourceService) ListActive(ctx context.Context) ([]model.LearningResource, error) {
	return s.resourceRepo.ListActive(ctx)
}

// ListAll returns every resource (admin view).
func (s *ResourceService) ListAll(ctx context.Context) ([]model.LearningResource, error) {
	return s.resourceRepo.ListAll(ctx)
}

// Get retrieves a resource with its files.
func (s *ResourceService) Get(ctx context.Context, id int) (*model.LearningResource, error) {
	lr, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return lr, nil
}

// Create authors a new resource.
func (s *ResourceService) Create(ctx context.Context, createdBy int, req *model.SaveResourceRequest) (*model.LearningResource, error) {
	lr := &model.LearningResource{
		Title:        req.Title,
		Description:  req.Description,
		ResourceType: model.ResourceType(req.ResourceType),
		CreatedBy:    createdBy,
		IsActive:     true,
	}
	if req.IsActive != nil {
		lr.IsActive = *req.IsActive
	}
	if err := s.resourceRepo.Create(ctx, lr); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return lr, nil
}

// Update rewrites a resource's metadata.
func (s *ResourceService) Update(ctx context.Context, id int, req *model.SaveResourceRequest) (*model.LearningResource, error) {
	lr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lr.Title = req.Title
	lr.Description = req.Description
	lr.ResourceType = model.ResourceType(req.ResourceType)
	if req.IsActive != nil {
		lr.IsActive = *req.IsActive
	}

	if err := s.resourceRepo.Update(ctx, lr); err != nil {
		return nil, fmt.Errorf("update resource: %w", err)
	}
	return lr, nil
}

// Delete removes a resource with its files and progress rows.
func (s *ResourceService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.resourceRepo.Delete(ctx, id)
}

// AddFile registers a file already present under the resource directory.
func (s *ResourceService) AddFile(ctx context.Context, resourceID int, req *model.AddResourceFileRequest) (*model.ResourceFile, error) {
	if _, err := s.Get(ctx, resourceID); err != nil {
		return nil, err
	}
	if !filepath.IsLocal(req.FilePath) {
		return nil, ErrUnsafePath
	}

	f := &model.ResourceFile{
		ResourceID:       resourceID,
		Filename:         req.Filename,
		OriginalFilename: req.OriginalFilename,
		FilePath:         req.FilePath,
		FileType:         req.FileType,
		FileSize:         req.FileSize,
		MimeType:         req.MimeType,
		DurationSeconds:  req.DurationSeconds,
		UploadOrder:      req.UploadOrder,
	}
	if err := s.resourceRepo.AddFile(ctx, f); err != nil {
		return nil, fmt.Errorf("add resource file: %w", err)
	}
	return f, nil
}

// DeleteFile removes a file registration.
func (s *ResourceService) DeleteFile(ctx context.Context, resourceID, fileID int) error {
	if _, err := s.getFile(ctx, resourceID, fileID); err != nil {
		return err
	}
	return s.resourceRepo.DeleteFile(ctx, resourceID, fileID)
}

// ResolveFile returns the on-disk path for a resource file, confined to the
// resource directory. The stored path is data, not trusted input: anything
// resolving outside the directory is rejected.
func (s *ResourceService) ResolveFile(ctx context.Context, resourceID, fileID int) (string, *model.ResourceFile, error) {
	f, err := s.getFile(ctx, resourceID, fileID)
	if err != nil {
		return "", nil, err
	}

	if !filepath.IsLocal(f.FilePath) {
		return "", nil, ErrUnsafePath
	}
	full := filepath.Join(s.cfg.ResourceDir, f.FilePath)

	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("stat resource file: %w", err)
	}
	return full, f, nil
}

func (s *ResourceService) getFile(ctx context.Context, resourceID, fileID int) (*model.ResourceFile, error) {
	f, err := s.resourceRepo.GetFile(ctx, resourceID, fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource file: %w", err)
	}
	return f, nil
}

// RecordProgress upserts the student's progress report on a resource.
func (s *ResourceService) RecordProgress(ctx context.Context, userID, resourceID int, req *model.UpdateProgressRequest) (*model.StudentProgress, error) {
	if _, err := s.Get(ctx, resourceID); err != nil {
		return nil, err
	}

	p := &model.StudentProgress{
		UserID:             userID,
		ResourceID:         resourceID,
		ProgressPercentage: req.ProgressPercentage,
		LastPosition:       req.LastPosition,
		Completed:          req.Completed,
		TimeSpentSeconds:   req.TimeSpentSeconds,
	}
	if err := s.progressRepo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	return p, nil
}

// ListProgress returns all of a student's progress rows.
func (s *ResourceService) ListProgress(ctx context.Context, userID int) ([]model.StudentProgress, error) {
	return s.progressRepo.ListByUser(ctx, userID)
}
