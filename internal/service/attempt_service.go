package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/notsocj/SmartExam/internal/grading"
	"github.com/notsocj/SmartExam/internal/model"
	"github.com/notsocj/SmartExam/internal/session"
	ws "github.com/notsocj/SmartExam/internal/websocket"
	"github.com/rs/zerolog"
)

// TestReader loads test definitions.
type TestReader interface {
	GetByID(ctx context.Context, id int) (*model.Test, error)
}

// QuestionReader loads a test's questions.
type QuestionReader interface {
	ListByTest(ctx context.Context, testID int) ([]model.Question, error)
}

// ResultStore persists graded results. Create surfaces the unique
// (user, test) constraint so a concurrent submit race has exactly one
// winner.
type ResultStore interface {
	Create(ctx context.Context, res *model.Result) error
	ReplaceForRetake(ctx context.Context, res *model.Result) error
	GetByUserAndTest(ctx context.Context, userID, testID int) (*model.Result, error)
}

// AttemptService drives the test attempt lifecycle. A student has at most
// one attempt at a time; the attempt lives in the session store and moves
// through start → heartbeats/violations → submit or abandon. Every terminal
// transition destroys the attempt.
type AttemptService struct {
	testRepo     TestReader
	questionRepo QuestionReader
	resultRepo   ResultStore
	attempts     session.Store
	auditor      Auditor
	proctor      ProctorNotifier
	log          zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	testRepo TestReader,
	questionRepo QuestionReader,
	resultRepo ResultStore,
	attempts session.Store,
	auditor Auditor,
	proctor ProctorNotifier,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		attempts:     attempts,
		auditor:      auditor,
		proctor:      proctor,
		log:          log.With().Str("component", "attempt_service").Logger(),
	}
}

// Active returns the student's current attempt, or nil when none exists.
func (s *AttemptService) Active(ctx context.Context, userID int) (*model.Attempt, error) {
	return s.attempts.Get(ctx, userID)
}

// Start opens an attempt on a test and returns the paper (questions without
// correct answers). Reentrant for the same test: a student refreshing mid
// attempt gets the paper back with telemetry intact. Starting a different
// test while one is active is rejected, as is starting a test the student
// already completed without a retake grant.
func (s *AttemptService) Start(ctx context.Context, userID, testID int) (*model.TestPaper, error) {
	att, err := s.attempts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if att != nil && att.TestID != testID {
		return nil, &ActiveAttemptError{ActiveTestID: att.TestID}
	}

	test, err := s.testRepo.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get test: %w", err)
	}

	questions, err := s.questionRepo.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	if att == nil {
		prior, err := s.resultRepo.GetByUserAndTest(ctx, userID, testID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("check prior result: %w", err)
		}
		if prior != nil && !prior.CanRetake {
			return nil, ErrAlreadyCompleted
		}

		att = &model.Attempt{
			TestID:      testID,
			StartedAt:   time.Now(),
			SecurityLog: []model.ViolationEntry{},
		}
		if err := s.attempts.Save(ctx, userID, att); err != nil {
			return nil, err
		}

		s.auditor.Record(ctx, model.AuditEvent{
			UserID:    userID,
			TestID:    testID,
			EventType: model.AuditTestStarted,
			Timestamp: time.Now().Unix(),
		})
		s.proctor.Notify(ctx, ws.ProctorEvent{
			Event:     ws.EventTestStarted,
			TestID:    testID,
			UserID:    userID,
			Timestamp: time.Now().Unix(),
		})
	}

	paper := &model.TestPaper{
		TestID:           test.ID,
		Title:            test.Title,
		TimeLimitMinutes: test.TimeLimitMinutes,
		Questions:        make([]model.QuestionForStudent, 0, len(questions)),
	}
	for i := range questions {
		paper.Questions = append(paper.Questions, questions[i].ForStudent())
	}
	return paper, nil
}

// Heartbeat records the client's periodic report. The client is
// authoritative for its own counters: values overwrite, never merge, so a
// late heartbeat can only move state toward what the client last saw.
func (s *AttemptService) Heartbeat(ctx context.Context, userID int, req *model.HeartbeatRequest) (*model.Attempt, error) {
	att, err := s.requireAttempt(ctx, userID, req.TestID)
	if err != nil {
		return nil, err
	}

	att.SecurityViolations = req.SecurityViolations
	att.TabSwitches = req.TabSwitches
	att.FullscreenExits = req.FullscreenExits
	att.LastHeartbeat = req.Timestamp

	if err := s.attempts.Save(ctx, userID, att); err != nil {
		return nil, err
	}

	if req.SecurityViolations > 0 {
		s.log.Warn().
			Int("user_id", userID).
			Int("test_id", req.TestID).
			Int("violations", req.SecurityViolations).
			Msg("Heartbeat reported violations")
		s.auditor.Record(ctx, model.AuditEvent{
			UserID:    userID,
			TestID:    req.TestID,
			EventType: model.AuditHeartbeatWarning,
			Detail:    fmt.Sprintf(`{"violations":%d}`, req.SecurityViolations),
			Timestamp: time.Now().Unix(),
		})
	}
	return att, nil
}

// RecordViolation appends one security event to the attempt's log. The log
// is capped; the counter keeps the true total. The client's running total
// wins when provided, otherwise the counter increments.
func (s *AttemptService) RecordViolation(ctx context.Context, userID int, req *model.ViolationRequest) (*model.Attempt, error) {
	att, err := s.requireAttempt(ctx, userID, req.TestID)
	if err != nil {
		return nil, err
	}

	att.AppendViolation(model.ViolationEntry{
		Type:      req.ViolationType,
		Timestamp: req.Timestamp,
		TestID:    req.TestID,
	})
	if req.TotalViolations > 0 {
		att.SecurityViolations = req.TotalViolations
	} else {
		att.SecurityViolations++
	}

	if err := s.attempts.Save(ctx, userID, att); err != nil {
		return nil, err
	}

	detail, _ := json.Marshal(map[string]any{
		"violation_type": req.ViolationType,
		"total":          att.SecurityViolations,
	})
	s.auditor.Record(ctx, model.AuditEvent{
		UserID:    userID,
		TestID:    req.TestID,
		EventType: model.AuditSecurityViolation,
		Detail:    string(detail),
		Timestamp: time.Now().Unix(),
	})
	s.proctor.Notify(ctx, ws.ProctorEvent{
		Event:      ws.EventViolation,
		TestID:     req.TestID,
		UserID:     userID,
		Detail:     req.ViolationType,
		Violations: att.SecurityViolations,
		Timestamp:  time.Now().Unix(),
	})
	return att, nil
}

// Submit grades the attempt and persists the result atomically with respect
// to concurrent submits: the unique (user, test) constraint picks the
// winner and the loser is told the test is already completed. The attempt
// is destroyed on every outcome that produced a durable result.
func (s *AttemptService) Submit(ctx context.Context, userID, testID int, req *model.SubmitTestRequest) (*model.Result, error) {
	att, err := s.requireAttempt(ctx, userID, testID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.ListByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	data, score := grading.Compose(questions, req.Answers, att.SecurityInfo(grading.ResultLogCap))
	res := &model.Result{
		UserID: userID,
		TestID: testID,
		Score:  score,
		Data:   *data,
	}

	prior, err := s.resultRepo.GetByUserAndTest(ctx, userID, testID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check prior result: %w", err)
	}

	if prior != nil {
		if !prior.CanRetake {
			// The sitting can't continue and can't be graded again.
			_ = s.attempts.Clear(ctx, userID)
			return nil, ErrAlreadyCompleted
		}
		if err := s.resultRepo.ReplaceForRetake(ctx, res); err != nil {
			return nil, fmt.Errorf("replace result: %w", err)
		}
	} else if err := s.resultRepo.Create(ctx, res); err != nil {
		if isUniqueViolation(err) {
			// Lost the submit race: a result landed between our check and
			// insert. Same outcome as a duplicate submit.
			_ = s.attempts.Clear(ctx, userID)
			return nil, ErrAlreadyCompleted
		}
		return nil, fmt.Errorf("create result: %w", err)
	}

	if err := s.attempts.Clear(ctx, userID); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Clear attempt after submit failed")
	}

	s.auditor.Record(ctx, model.AuditEvent{
		UserID:    userID,
		TestID:    testID,
		EventType: model.AuditTestSubmitted,
		Detail:    fmt.Sprintf(`{"score":%.2f,"violations":%d}`, score, att.SecurityViolations),
		Timestamp: time.Now().Unix(),
	})
	s.proctor.Notify(ctx, ws.ProctorEvent{
		Event:     ws.EventTestSubmitted,
		TestID:    testID,
		UserID:    userID,
		Score:     score,
		Timestamp: time.Now().Unix(),
	})
	return res, nil
}

// Abandon discards the attempt without grading. Fire-and-forget: the call
// succeeds whether or not an attempt exists, because the closing browser
// that sends it will never read the response.
func (s *AttemptService) Abandon(ctx context.Context, userID int, req *model.AbandonRequest) {
	att, err := s.attempts.Get(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Get attempt on abandon failed")
		return
	}
	if att == nil {
		return
	}

	if err := s.attempts.Clear(ctx, userID); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Clear attempt on abandon failed")
		return
	}

	detail, _ := json.Marshal(map[string]any{
		"violations":  att.SecurityViolations,
		"reported_at": req.Timestamp,
	})
	s.auditor.Record(ctx, model.AuditEvent{
		UserID:    userID,
		TestID:    att.TestID,
		EventType: model.AuditTestAbandoned,
		Detail:    string(detail),
		Timestamp: time.Now().Unix(),
	})
	s.proctor.Notify(ctx, ws.ProctorEvent{
		Event:     ws.EventTestAbandoned,
		TestID:    att.TestID,
		UserID:    userID,
		Timestamp: time.Now().Unix(),
	})
}

func (s *AttemptService) requireAttempt(ctx context.Context, userID, testID int) (*model.Attempt, error) {
	att, err := s.attempts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, ErrNoActiveAttempt
	}
	if att.TestID != testID {
		return nil, ErrTestIDMismatch
	}
	return att, nil
}
