package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notsocj/SmartExam/internal/model"
)

// TestRepository handles test definition data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// GetByID retrieves a test with its question count.
func (r *TestRepository) GetByID(ctx context.Context, id int) (*model.Test, error) {
	t := &model.Test{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.title, t.description, t.time_limit_minutes, t.learning_resource_id,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_at, t.updated_at
		 FROM tests t WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.TimeLimitMinutes, &t.LearningResourceID,
		&t.QuestionCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves all tests ordered by creation time, newest first.
func (r *TestRepository) List(ctx context.Context) ([]model.Test, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, t.description, t.time_limit_minutes, t.learning_resource_id,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_at, t.updated_at
		 FROM tests t
		 ORDER BY t.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.TimeLimitMinutes, &t.LearningResourceID,
			&t.QuestionCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// ListAvailableForStudent retrieves all tests with the student's completion
// status overlaid from the results table.
func (r *TestRepository) ListAvailableForStudent(ctx context.Context, userID int) ([]model.AvailableTest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, t.description, t.time_limit_minutes, t.learning_resource_id,
		        (SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id),
		        t.created_at, t.updated_at,
		        res.id, res.score, COALESCE(res.can_retake, FALSE)
		 FROM tests t
		 LEFT JOIN results res ON res.test_id = t.id AND res.user_id = $1
		 ORDER BY t.created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.AvailableTest
	for rows.Next() {
		var at model.AvailableTest
		if err := rows.Scan(&at.ID, &at.Title, &at.Description, &at.TimeLimitMinutes, &at.LearningResourceID,
			&at.QuestionCount, &at.CreatedAt, &at.UpdatedAt,
			&at.ResultID, &at.Score, &at.CanRetake); err != nil {
			return nil, err
		}
		at.Completed = at.ResultID != nil
		tests = append(tests, at)
	}
	return tests, rows.Err()
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, description, time_limit_minutes, learning_resource_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.TimeLimitMinutes, t.LearningResourceID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update rewrites a test's mutable fields.
func (r *TestRepository) Update(ctx context.Context, t *model.Test) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE tests
		 SET title = $1, description = $2, time_limit_minutes = $3, learning_resource_id = $4, updated_at = NOW()
		 WHERE id = $5`,
		t.Title, t.Description, t.TimeLimitMinutes, t.LearningResourceID, t.ID)
	return err
}

// Delete removes a test. Questions and results cascade at the schema level.
func (r *TestRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tests WHERE id = $1`, id)
	return err
}
