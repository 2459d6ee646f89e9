package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/notsocj/SmartExam/internal/model"
)

// QuestionRepository handles question data access. Choices and choice_images
// are stored as JSONB columns and scanned straight into string slices.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves all questions for a test in authoring order.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, question_text, question_type, choices, choice_images,
		        correct_answer, image_path, created_at, updated_at
		 FROM questions WHERE test_id = $1
		 ORDER BY id`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.QuestionText, &q.QuestionType, &q.Choices, &q.ChoiceImages,
			&q.CorrectAnswer, &q.ImagePath, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a question by id.
func (r *QuestionRepository) GetByID(ctx context.Context, id int) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, test_id, question_text, question_type, choices, choice_images,
		        correct_answer, image_path, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.TestID, &q.QuestionText, &q.QuestionType, &q.Choices, &q.ChoiceImages,
		&q.CorrectAnswer, &q.ImagePath, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (test_id, question_text, question_type, choices, choice_images, correct_answer, image_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		q.TestID, q.QuestionText, q.QuestionType, q.Choices, q.ChoiceImages, q.CorrectAnswer, q.ImagePath,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update rewrites a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET question_text = $1, question_type = $2, choices = $3, choice_images = $4,
		     correct_answer = $5, image_path = $6, updated_at = NOW()
		 WHERE id = $7`,
		q.QuestionText, q.QuestionType, q.Choices, q.ChoiceImages, q.CorrectAnswer, q.ImagePath, q.ID)
	return err
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// CountByTest counts a test's questions.
func (r *QuestionRepository) CountByTest(ctx context.Context, testID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE test_id = $1`, testID).Scan(&count)
	return count, err
}
