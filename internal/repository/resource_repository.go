package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notsocj/SmartExam/internal/model"
)

// ResourceRepository handles learning resource and resource file data access.
type ResourceRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(pool *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{pool: pool}
}

// ListActive retrieves active resources, newest first, without files.
func (r *ResourceRepository) ListActive(ctx context.Context) ([]model.LearningResource, error) {
	return r.list(ctx, true)
}

// ListAll retrieves every resource regardless of active flag (admin view).
func (r *ResourceRepository) ListAll(ctx context.Context) ([]model.LearningResource, error) {
	return r.list(ctx, false)
}

func (r *ResourceRepository) list(ctx context.Context, activeOnly bool) ([]model.LearningResource, error) {
	query := `SELECT id, title, description, resource_type, created_by, is_active, created_at, updated_at
	          FROM learning_resources`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []model.LearningResource
	for rows.Next() {
		var lr model.LearningResource
		if err := rows.Scan(&lr.ID, &lr.Title, &lr.Description, &lr.ResourceType, &lr.CreatedBy,
			&lr.IsActive, &lr.CreatedAt, &lr.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, lr)
	}
	return resources, rows.Err()
}

// GetByID retrieves a resource with its files in upload order.
func (r *ResourceRepository) GetByID(ctx context.Context, id int) (*model.LearningResource, error) {
	lr := &model.LearningResource{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, resource_type, created_by, is_active, created_at, updated_at
		 FROM learning_resources WHERE id = $1`, id,
	).Scan(&lr.ID, &lr.Title, &lr.Description, &lr.ResourceType, &lr.CreatedBy,
		&lr.IsActive, &lr.CreatedAt, &lr.UpdatedAt)
	if err != nil {
		return nil, err
	}

	files, err := r.ListFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	lr.Files = files
	return lr, nil
}

// Create inserts a new resource.
func (r *ResourceRepository) Create(ctx context.Context, lr *model.LearningResource) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO learning_resources (title, description, resource_type, created_by, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		lr.Title, lr.Description, lr.ResourceType, lr.CreatedBy, lr.IsActive,
	).Scan(&lr.ID, &lr.CreatedAt, &lr.UpdatedAt)
}

// Update rewrites a resource's metadata.
func (r *ResourceRepository) Update(ctx context.Context, lr *model.LearningResource) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE learning_resources
		 SET title = $1, description = $2, resource_type = $3, is_active = $4, updated_at = NOW()
		 WHERE id = $5`,
		lr.Title, lr.Description, lr.ResourceType, lr.IsActive, lr.ID)
	return err
}

// Delete removes a resource. Files and progress rows cascade.
func (r *ResourceRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM learning_resources WHERE id = $1`, id)
	return err
}

// ListFiles retrieves a resource's files in upload order.
func (r *ResourceRepository) ListFiles(ctx context.Context, resourceID int) ([]model.ResourceFile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, resource_id, filename, original_filename, file_path, file_type,
		        file_size, mime_type, duration_seconds, upload_order, created_at
		 FROM resource_files WHERE resource_id = $1
		 ORDER BY upload_order, id`, resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []model.ResourceFile
	for rows.Next() {
		var f model.ResourceFile
		if err := rows.Scan(&f.ID, &f.ResourceID, &f.Filename, &f.OriginalFilename, &f.FilePath,
			&f.FileType, &f.FileSize, &f.MimeType, &f.DurationSeconds, &f.UploadOrder, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetFile retrieves one resource file by id, scoped to its resource.
func (r *ResourceRepository) GetFile(ctx context.Context, resourceID, fileID int) (*model.ResourceFile, error) {
	f := &model.ResourceFile{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, resource_id, filename, original_filename, file_path, file_type,
		        file_size, mime_type, duration_seconds, upload_order, created_at
		 FROM resource_files WHERE id = $1 AND resource_id = $2`, fileID, resourceID,
	).Scan(&f.ID, &f.ResourceID, &f.Filename, &f.OriginalFilename, &f.FilePath,
		&f.FileType, &f.FileSize, &f.MimeType, &f.DurationSeconds, &f.UploadOrder, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// AddFile registers a file under a resource.
func (r *ResourceRepository) AddFile(ctx context.Context, f *model.ResourceFile) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO resource_files (resource_id, filename, original_filename, file_path,
		                             file_type, file_size, mime_type, duration_seconds, upload_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		f.ResourceID, f.Filename, f.OriginalFilename, f.FilePath,
		f.FileType, f.FileSize, f.MimeType, f.DurationSeconds, f.UploadOrder,
	).Scan(&f.ID, &f.CreatedAt)
}

// DeleteFile removes a file registration.
func (r *ResourceRepository) DeleteFile(ctx context.Context, resourceID, fileID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM resource_files WHERE id = $1 AND resource_id = $2`, fileID, resourceID)
	return err
}
