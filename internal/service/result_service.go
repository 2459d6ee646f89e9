package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/notsocj/SmartExam/internal/repository"
)

// ResultService handles result viewing, admin records, retake grants, and
// CSV export.
type ResultService struct {
	resultRepo *repository.ResultRepository
	userRepo   *repository.UserRepository
	testRepo   *repository.TestRepository
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ResultRepository, userRepo *repository.UserRepository, testRepo *repository.TestRepository) *ResultService {
	return &ResultService{resultRepo: resultRepo, userRepo: userRepo, testRepo: testRepo}
}

// GetForStudent retrieves one result, enforcing ownership.
func (s *ResultService) GetForStudent(ctx context.Context, userID, resultID int) (*model.Result, error) {
	res, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	if res.UserID != userID {
		return nil, ErrForbidden
	}
	return res, nil
}

// ListForStudent retrieves all of a student's results.
func (s *ResultService) ListForStudent(ctx context.Context, userID int) ([]model.Result, error) {
	return s.resultRepo.ListByUser(ctx, userID)
}

// Get retrieves one result without an ownership check (admin view).
func (s *ResultService) Get(ctx context.Context, resultID int) (*model.Result, error) {
	res, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}

// GrantRetake flips the retake flag on a result, letting the student sit
// the test again. The new sitting's result replaces this one.
func (s *ResultService) GrantRetake(ctx context.Context, resultID int) error {
	affected, err := s.resultRepo.SetCanRetake(ctx, resultID, true)
	if err != nil {
		return fmt.Errorf("set can_retake: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// StudentRecords aggregates every student's result history for the admin
// records view.
func (s *ResultService) StudentRecords(ctx context.Context) ([]model.StudentRecordSummary, error) {
	students, err := s.userRepo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	summaries := make([]model.StudentRecordSummary, 0, len(students))
	for _, student := range students {
		results, err := s.resultRepo.ListByUser(ctx, student.ID)
		if err != nil {
			return nil, fmt.Errorf("list results for student %d: %w", student.ID, err)
		}

		summary := model.StudentRecordSummary{
			Student:    student,
			Results:    results,
			TestsTaken: len(results),
		}
		var sum float64
		for _, res := range results {
			sum += res.Score
			if res.Score > summary.BestScore {
				summary.BestScore = res.Score
			}
		}
		if len(results) > 0 {
			summary.AverageScore = sum / float64(len(results))
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ExportCSV streams a test's results as CSV, one row per student, with the
// captured telemetry counters alongside the score.
func (s *ResultService) ExportCSV(ctx context.Context, testID int, w io.Writer) error {
	if _, err := s.testRepo.GetByID(ctx, testID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get test: %w", err)
	}

	results, err := s.resultRepo.ListByTest(ctx, testID)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"Student Name", "Student ID", "Username", "Score", "Date Taken", "Violations", "Tab Switches", "Fullscreen Exits"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		u, err := s.userRepo.GetByID(ctx, res.UserID)
		if err != nil {
			return fmt.Errorf("get student %d: %w", res.UserID, err)
		}
		studentID := ""
		if u.StudentID != nil {
			studentID = *u.StudentID
		}
		row := []string{
			u.Name,
			studentID,
			u.Username,
			strconv.FormatFloat(res.Score, 'f', 2, 64),
			res.DateTaken.Format("2006-01-02 15:04:05"),
			strconv.Itoa(res.Data.Security.Violations),
			strconv.Itoa(res.Data.Security.TabSwitches),
			strconv.Itoa(res.Data.Security.FullscreenExits),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
