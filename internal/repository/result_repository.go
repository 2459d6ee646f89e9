package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notsocj/SmartExam/internal/model"
)

// ResultRepository handles graded result data access. The results table
// carries a UNIQUE (user_id, test_id) constraint; concurrent submits race on
// it and the loser surfaces as a unique violation for the service to map.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts a new result. The structured payload lands in a JSONB
// column via the model's flat wire layout.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, test_id, score, data, can_retake)
		 VALUES ($1, $2, $3, $4, FALSE)
		 RETURNING id, date_taken`,
		res.UserID, res.TestID, res.Score, res.Data,
	).Scan(&res.ID, &res.DateTaken)
}

// ReplaceForRetake atomically swaps a student's prior result for a test with
// the freshly graded one. Used when the prior result carried the retake
// flag: the old row goes away and the new sitting becomes the record.
func (r *ResultRepository) ReplaceForRetake(ctx context.Context, res *model.Result) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM results WHERE user_id = $1 AND test_id = $2`,
		res.UserID, res.TestID); err != nil {
		return err
	}
	if err := tx.QueryRow(ctx,
		`INSERT INTO results (user_id, test_id, score, data, can_retake)
		 VALUES ($1, $2, $3, $4, FALSE)
		 RETURNING id, date_taken`,
		res.UserID, res.TestID, res.Score, res.Data,
	).Scan(&res.ID, &res.DateTaken); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID retrieves a result by id.
func (r *ResultRepository) GetByID(ctx context.Context, id int) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, test_id, score, date_taken, data, can_retake
		 FROM results WHERE id = $1`, id,
	).Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.DateTaken, &res.Data, &res.CanRetake)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetByUserAndTest retrieves a student's result for a specific test.
func (r *ResultRepository) GetByUserAndTest(ctx context.Context, userID, testID int) (*model.Result, error) {
	res := &model.Result{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, test_id, score, date_taken, data, can_retake
		 FROM results WHERE user_id = $1 AND test_id = $2`, userID, testID,
	).Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.DateTaken, &res.Data, &res.CanRetake)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByUser retrieves all of a student's results, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, test_id, score, date_taken, data, can_retake
		 FROM results WHERE user_id = $1
		 ORDER BY date_taken DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// ListByTest retrieves all results for a test, newest first.
func (r *ResultRepository) ListByTest(ctx context.Context, testID int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, test_id, score, date_taken, data, can_retake
		 FROM results WHERE test_id = $1
		 ORDER BY date_taken DESC`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// SetCanRetake flips the retake flag on a result.
func (r *ResultRepository) SetCanRetake(ctx context.Context, resultID int, canRetake bool) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE results SET can_retake = $1 WHERE id = $2`, canRetake, resultID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type resultRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows resultRows) ([]model.Result, error) {
	var results []model.Result
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.DateTaken, &res.Data, &res.CanRetake); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
