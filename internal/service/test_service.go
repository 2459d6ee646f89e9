package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/notsocj/SmartExam/internal/repository"
)

// ErrBadQuestion flags a question payload that parses but can't be graded.
var ErrBadQuestion = errors.New("multiple choice questions need at least two choices, one of them the correct answer")

// TestService handles test and question authoring plus the student-facing
// test list.
type TestService struct {
	testRepo     *repository.TestRepository
	questionRepo *repository.QuestionRepository
}

// NewTestService creates a new TestService.
func NewTestService(testRepo *repository.TestRepository, questionRepo *repository.QuestionRepository) *TestService {
	return &TestService{testRepo: testRepo, questionRepo: questionRepo}
}

// List returns all tests (admin view).
func (s *TestService) List(ctx context.Context) ([]model.Test, error) {
	return s.testRepo.List(ctx)
}

// ListAvailable returns all tests with the student's completion status.
func (s *TestService) ListAvailable(ctx context.Context, userID int) ([]model.AvailableTest, error) {
	return s.testRepo.ListAvailableForStudent(ctx, userID)
}

// Get retrieves one test.
func (s *TestService) Get(ctx context.Context, id int) (*model.Test, error) {
	t, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	return t, nil
}

// Create authors a new test.
func (s *TestService) Create(ctx context.Context, req *model.CreateTestRequest) (*model.Test, error) {
	t := &model.Test{
		Title:              req.Title,
		Description:        req.Description,
		TimeLimitMinutes:   req.TimeLimitMinutes,
		LearningResourceID: req.LearningResourceID,
	}
	if err := s.testRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create test: %w", err)
	}
	return t, nil
}

// Update patches a test's fields; zero-valued request fields keep the
// stored value.
func (s *TestService) Update(ctx context.Context, id int, req *model.UpdateTestRequest) (*model.Test, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		t.Title = req.Title
	}
	if req.Description != "" {
		t.Description = req.Description
	}
	if req.TimeLimitMinutes > 0 {
		t.TimeLimitMinutes = req.TimeLimitMinutes
	}
	if req.LearningResourceID != nil {
		t.LearningResourceID = req.LearningResourceID
	}

	if err := s.testRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update test: %w", err)
	}
	return t, nil
}

// Delete removes a test with its questions and results.
func (s *TestService) Delete(ctx context.Context, id int) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.testRepo.Delete(ctx, id)
}

// ListQuestions returns a test's questions including correct answers
// (admin view).
func (s *TestService) ListQuestions(ctx context.Context, testID int) ([]model.Question, error) {
	if _, err := s.Get(ctx, testID); err != nil {
		return nil, err
	}
	return s.questionRepo.ListByTest(ctx, testID)
}

// CreateQuestion adds a question to a test.
func (s *TestService) CreateQuestion(ctx context.Context, testID int, req *model.SaveQuestionRequest) (*model.Question, error) {
	if _, err := s.Get(ctx, testID); err != nil {
		return nil, err
	}
	q := questionFromRequest(req)
	q.TestID = testID
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// UpdateQuestion rewrites a question, keeping it attached to its test.
func (s *TestService) UpdateQuestion(ctx context.Context, testID, questionID int, req *model.SaveQuestionRequest) (*model.Question, error) {
	existing, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	if existing.TestID != testID {
		return nil, ErrNotFound
	}

	q := questionFromRequest(req)
	q.ID = questionID
	q.TestID = testID
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return q, nil
}

// DeleteQuestion removes a question from a test.
func (s *TestService) DeleteQuestion(ctx context.Context, testID, questionID int) error {
	existing, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}
	if existing.TestID != testID {
		return ErrNotFound
	}
	return s.questionRepo.Delete(ctx, questionID)
}

func questionFromRequest(req *model.SaveQuestionRequest) *model.Question {
	return &model.Question{
		QuestionText:  req.QuestionText,
		QuestionType:  model.QuestionType(req.QuestionType),
		Choices:       req.Choices,
		ChoiceImages:  req.ChoiceImages,
		CorrectAnswer: req.CorrectAnswer,
		ImagePath:     req.ImagePath,
	}
}

// validateQuestion enforces that multiple choice questions are gradable:
// at least two choices, and the correct answer is one of them (compared
// the way grading compares).
func validateQuestion(q *model.Question) error {
	if q.QuestionType != model.QuestionTypeMultipleChoice {
		return nil
	}
	if len(q.Choices) < 2 {
		return ErrBadQuestion
	}
	want := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
	for _, c := range q.Choices {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return nil
		}
	}
	return ErrBadQuestion
}
