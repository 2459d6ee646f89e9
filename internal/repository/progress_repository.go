package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notsocj/SmartExam/internal/model"
)

// ProgressRepository handles student learning progress data access.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

// Upsert records a progress report, creating the row on first access.
// Progress only moves forward; a stale report never lowers the stored
// percentage or clears the completed flag.
func (r *ProgressRepository) Upsert(ctx context.Context, p *model.StudentProgress) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO student_progress (user_id, resource_id, progress_percentage, last_position, completed, time_spent_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, resource_id) DO UPDATE SET
		   progress_percentage = GREATEST(student_progress.progress_percentage, EXCLUDED.progress_percentage),
		   last_position = EXCLUDED.last_position,
		   completed = student_progress.completed OR EXCLUDED.completed,
		   time_spent_seconds = student_progress.time_spent_seconds + EXCLUDED.time_spent_seconds,
		   last_accessed = NOW()
		 RETURNING id, progress_percentage, completed, time_spent_seconds, first_accessed, last_accessed`,
		p.UserID, p.ResourceID, p.ProgressPercentage, p.LastPosition, p.Completed, p.TimeSpentSeconds,
	).Scan(&p.ID, &p.ProgressPercentage, &p.Completed, &p.TimeSpentSeconds, &p.FirstAccessed, &p.LastAccessed)
}

// GetByUserAndResource retrieves a student's progress on one resource.
func (r *ProgressRepository) GetByUserAndResource(ctx context.Context, userID, resourceID int) (*model.StudentProgress, error) {
	p := &model.StudentProgress{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, resource_id, progress_percentage, last_position, completed,
		        time_spent_seconds, first_accessed, last_accessed
		 FROM student_progress WHERE user_id = $1 AND resource_id = $2`, userID, resourceID,
	).Scan(&p.ID, &p.UserID, &p.ResourceID, &p.ProgressPercentage, &p.LastPosition, &p.Completed,
		&p.TimeSpentSeconds, &p.FirstAccessed, &p.LastAccessed)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListByUser retrieves all of a student's progress rows.
func (r *ProgressRepository) ListByUser(ctx context.Context, userID int) ([]model.StudentProgress, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, resource_id, progress_percentage, last_position, completed,
		        time_spent_seconds, first_accessed, last_accessed
		 FROM student_progress WHERE user_id = $1
		 ORDER BY last_accessed DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []model.StudentProgress
	for rows.Next() {
		var p model.StudentProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.ResourceID, &p.ProgressPercentage, &p.LastPosition, &p.Completed,
			&p.TimeSpentSeconds, &p.FirstAccessed, &p.LastAccessed); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
