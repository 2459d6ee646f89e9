package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/notsocj/SmartExam/internal/model"
	ws "github.com/notsocj/SmartExam/internal/websocket"
	"github.com/rs/zerolog"
)

// ─── In-memory fakes ────────────────────────────────────────────────

type fakeAttemptStore struct {
	attempts map[int]*model.Attempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[int]*model.Attempt)}
}

func (f *fakeAttemptStore) Get(_ context.Context, userID int) (*model.Attempt, error) {
	att, ok := f.attempts[userID]
	if !ok {
		return nil, nil
	}
	// Copy like a JSON round trip would, so callers can't mutate the store.
	clone := *att
	clone.SecurityLog = append([]model.ViolationEntry(nil), att.SecurityLog...)
	return &clone, nil
}

func (f *fakeAttemptStore) Save(_ context.Context, userID int, att *model.Attempt) error {
	clone := *att
	clone.SecurityLog = append([]model.ViolationEntry(nil), att.SecurityLog...)
	f.attempts[userID] = &clone
	return nil
}

func (f *fakeAttemptStore) Clear(_ context.Context, userID int) error {
	delete(f.attempts, userID)
	return nil
}

type fakeTestRepo struct {
	tests map[int]*model.Test
}

func (f *fakeTestRepo) GetByID(_ context.Context, id int) (*model.Test, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return t, nil
}

type fakeQuestionRepo struct {
	questions map[int][]model.Question
}

func (f *fakeQuestionRepo) ListByTest(_ context.Context, testID int) ([]model.Question, error) {
	return f.questions[testID], nil
}

type fakeResultRepo struct {
	results   map[string]*model.Result
	createErr error
	replaced  int
	nextID    int
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[string]*model.Result)}
}

func resultKey(userID, testID int) string {
	return fmt.Sprintf("%d/%d", userID, testID)
}

func (f *fakeResultRepo) Create(_ context.Context, res *model.Result) error {
	if f.createErr != nil {
		return f.createErr
	}
	key := resultKey(res.UserID, res.TestID)
	if _, ok := f.results[key]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	f.nextID++
	res.ID = f.nextID
	f.results[key] = res
	return nil
}

func (f *fakeResultRepo) ReplaceForRetake(_ context.Context, res *model.Result) error {
	f.nextID++
	res.ID = f.nextID
	f.results[resultKey(res.UserID, res.TestID)] = res
	f.replaced++
	return nil
}

func (f *fakeResultRepo) GetByUserAndTest(_ context.Context, userID, testID int) (*model.Result, error) {
	res, ok := f.results[resultKey(userID, testID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return res, nil
}

type fakeAuditor struct {
	events []model.AuditEvent
}

func (f *fakeAuditor) Record(_ context.Context, event model.AuditEvent) {
	f.events = append(f.events, event)
}

func (f *fakeAuditor) countOf(t model.AuditEventType) int {
	n := 0
	for _, e := range f.events {
		if e.EventType == t {
			n++
		}
	}
	return n
}

type fakeProctor struct {
	events []ws.ProctorEvent
}

func (f *fakeProctor) Notify(_ context.Context, event ws.ProctorEvent) {
	f.events = append(f.events, event)
}

// ─── Harness ────────────────────────────────────────────────────────

type attemptFixture struct {
	svc      *AttemptService
	attempts *fakeAttemptStore
	results  *fakeResultRepo
	auditor  *fakeAuditor
	proctor  *fakeProctor
}

func newAttemptFixture(t *testing.T) *attemptFixture {
	t.Helper()

	tests := map[int]*model.Test{
		1: {ID: 1, Title: "Algebra Basics", TimeLimitMinutes: 30},
		2: {ID: 2, Title: "Geometry", TimeLimitMinutes: 45},
		3: {ID: 3, Title: "Empty Test", TimeLimitMinutes: 10},
	}
	questions := map[int][]model.Question{
		1: {
			{ID: 10, TestID: 1, QuestionText: "2+2?", QuestionType: model.QuestionTypeIdentification, CorrectAnswer: "4"},
			{ID: 11, TestID: 1, QuestionText: "Pick", QuestionType: model.QuestionTypeMultipleChoice, Choices: []string{"a", "b"}, CorrectAnswer: "b"},
		},
		2: {
			{ID: 20, TestID: 2, QuestionText: "Area?", QuestionType: model.QuestionTypeIdentification, CorrectAnswer: "pi"},
		},
	}

	f := &attemptFixture{
		attempts: newFakeAttemptStore(),
		results:  newFakeResultRepo(),
		auditor:  &fakeAuditor{},
		proctor:  &fakeProctor{},
	}
	f.svc = NewAttemptService(
		&fakeTestRepo{tests: tests},
		&fakeQuestionRepo{questions: questions},
		f.results,
		f.attempts,
		f.auditor,
		f.proctor,
		zerolog.Nop(),
	)
	return f
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestStart_CreatesAttemptAndStripsAnswers(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	paper, err := f.svc.Start(ctx, 100, 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if paper.TestID != 1 || len(paper.Questions) != 2 {
		t.Fatalf("unexpected paper: %+v", paper)
	}

	att, _ := f.attempts.Get(ctx, 100)
	if att == nil || att.TestID != 1 {
		t.Fatalf("expected stored attempt for test 1, got %+v", att)
	}
	if f.auditor.countOf(model.AuditTestStarted) != 1 {
		t.Fatal("expected one test_started audit event")
	}
	if len(f.proctor.events) != 1 || f.proctor.events[0].Event != ws.EventTestStarted {
		t.Fatalf("expected test_started proctor event, got %+v", f.proctor.events)
	}
}

func TestStart_SecondTestRejectedWhileActive(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	_, err := f.svc.Start(ctx, 100, 2)
	if !errors.Is(err, ErrAttemptInProgress) {
		t.Fatalf("expected ErrAttemptInProgress, got %v", err)
	}
	var active *ActiveAttemptError
	if !errors.As(err, &active) {
		t.Fatalf("expected ActiveAttemptError, got %T", err)
	}
	if active.ActiveTestID != 1 {
		t.Errorf("ActiveTestID = %d, want 1", active.ActiveTestID)
	}
}

func TestStart_ResumeKeepsTelemetry(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.svc.RecordViolation(ctx, 100, &model.ViolationRequest{TestID: 1, ViolationType: "tab_switch"}); err != nil {
		t.Fatalf("RecordViolation: %v", err)
	}

	// Refresh mid-attempt.
	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("resume Start: %v", err)
	}

	att, _ := f.attempts.Get(ctx, 100)
	if att.SecurityViolations != 1 || len(att.SecurityLog) != 1 {
		t.Fatalf("telemetry reset on resume: %+v", att)
	}
	if got := f.auditor.countOf(model.AuditTestStarted); got != 1 {
		t.Fatalf("resume re-audited start: %d events", got)
	}
}

func TestStart_UnknownTestAndEmptyTest(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 99); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Start(ctx, 100, 3); err != ErrNoQuestions {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestStart_CompletedTestNeedsRetakeGrant(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	f.results.results[resultKey(100, 1)] = &model.Result{ID: 1, UserID: 100, TestID: 1, Score: 80}

	if _, err := f.svc.Start(ctx, 100, 1); err != ErrAlreadyCompleted {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	f.results.results[resultKey(100, 1)].CanRetake = true
	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("expected retake grant to allow start, got %v", err)
	}
}

func TestHeartbeat_OverwritesCounters(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	att, err := f.svc.Heartbeat(ctx, 100, &model.HeartbeatRequest{
		TestID:             1,
		Timestamp:          "2026-09-01T10:00:00Z",
		SecurityViolations: 3,
		TabSwitches:        2,
		FullscreenExits:    1,
	})
	if err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if att.SecurityViolations != 3 || att.TabSwitches != 2 || att.FullscreenExits != 1 {
		t.Fatalf("counters not overwritten: %+v", att)
	}

	// A later heartbeat with lower counters still overwrites: the client
	// owns its counters.
	att, err = f.svc.Heartbeat(ctx, 100, &model.HeartbeatRequest{TestID: 1, SecurityViolations: 0})
	if err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if att.SecurityViolations != 0 || att.TabSwitches != 0 {
		t.Fatalf("counters not overwritten by zero report: %+v", att)
	}

	if f.auditor.countOf(model.AuditHeartbeatWarning) != 1 {
		t.Fatal("expected exactly one heartbeat warning (only the nonzero report)")
	}
}

func TestHeartbeat_RequiresMatchingAttempt(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Heartbeat(ctx, 100, &model.HeartbeatRequest{TestID: 1}); err != ErrNoActiveAttempt {
		t.Fatalf("expected ErrNoActiveAttempt, got %v", err)
	}

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.svc.Heartbeat(ctx, 100, &model.HeartbeatRequest{TestID: 2}); err != ErrTestIDMismatch {
		t.Fatalf("expected ErrTestIDMismatch, got %v", err)
	}

	// Mismatch must not have touched the stored attempt.
	att, _ := f.attempts.Get(ctx, 100)
	if att.TestID != 1 {
		t.Fatalf("attempt mutated by rejected heartbeat: %+v", att)
	}
}

func TestRecordViolation_CapsLogKeepsTotal(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var att *model.Attempt
	var err error
	for i := 0; i < 150; i++ {
		att, err = f.svc.RecordViolation(ctx, 100, &model.ViolationRequest{
			TestID:        1,
			ViolationType: "tab_switch",
			Timestamp:     strconv.Itoa(i),
		})
		if err != nil {
			t.Fatalf("RecordViolation %d: %v", i, err)
		}
	}

	if len(att.SecurityLog) != model.ViolationLogCap {
		t.Fatalf("log length = %d, want %d", len(att.SecurityLog), model.ViolationLogCap)
	}
	// Oldest entries dropped, most recent retained in order.
	if att.SecurityLog[0].Timestamp != "50" || att.SecurityLog[model.ViolationLogCap-1].Timestamp != "149" {
		t.Fatalf("wrong window retained: first=%s last=%s",
			att.SecurityLog[0].Timestamp, att.SecurityLog[model.ViolationLogCap-1].Timestamp)
	}
	if att.SecurityViolations != 150 {
		t.Fatalf("violations = %d, want 150", att.SecurityViolations)
	}
}

func TestRecordViolation_ClientTotalWins(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	att, err := f.svc.RecordViolation(ctx, 100, &model.ViolationRequest{
		TestID:          1,
		ViolationType:   "fullscreen_exit",
		TotalViolations: 7,
	})
	if err != nil {
		t.Fatalf("RecordViolation: %v", err)
	}
	if att.SecurityViolations != 7 {
		t.Fatalf("violations = %d, want client total 7", att.SecurityViolations)
	}
	if len(f.proctor.events) == 0 || f.proctor.events[len(f.proctor.events)-1].Event != ws.EventViolation {
		t.Fatal("expected violation proctor event")
	}
}

func TestSubmit_GradesAndDestroysAttempt(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.svc.RecordViolation(ctx, 100, &model.ViolationRequest{TestID: 1, ViolationType: "tab_switch"}); err != nil {
		t.Fatalf("RecordViolation: %v", err)
	}

	res, err := f.svc.Submit(ctx, 100, 1, &model.SubmitTestRequest{
		Answers: map[string]string{"10": "4", "11": "a"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Score != 50 {
		t.Fatalf("score = %v, want 50", res.Score)
	}
	if res.Data.Security.Violations != 1 || len(res.Data.Security.SecurityLog) != 1 {
		t.Fatalf("telemetry not embedded in result: %+v", res.Data.Security)
	}

	if att, _ := f.attempts.Get(ctx, 100); att != nil {
		t.Fatalf("attempt survived submit: %+v", att)
	}
	if f.auditor.countOf(model.AuditTestSubmitted) != 1 {
		t.Fatal("expected test_submitted audit event")
	}

	// Free again after submit: other routes unblocked, but the test itself
	// is now completed.
	if _, err := f.svc.Start(ctx, 100, 1); err != ErrAlreadyCompleted {
		t.Fatalf("expected ErrAlreadyCompleted after submit, got %v", err)
	}
}

func TestSubmit_RequiresMatchingAttempt(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, 100, 1, &model.SubmitTestRequest{Answers: map[string]string{}}); err != ErrNoActiveAttempt {
		t.Fatalf("expected ErrNoActiveAttempt, got %v", err)
	}

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.svc.Submit(ctx, 100, 2, &model.SubmitTestRequest{Answers: map[string]string{}}); err != ErrTestIDMismatch {
		t.Fatalf("expected ErrTestIDMismatch, got %v", err)
	}
}

func TestSubmit_RaceLoserSeesAlreadyCompleted(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// A concurrent submit won between the prior-result check and the
	// insert: the insert hits the unique constraint.
	f.results.createErr = &pgconn.PgError{Code: "23505"}

	_, err := f.svc.Submit(ctx, 100, 1, &model.SubmitTestRequest{Answers: map[string]string{"10": "4"}})
	if err != ErrAlreadyCompleted {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if att, _ := f.attempts.Get(ctx, 100); att != nil {
		t.Fatal("attempt should be destroyed when the race is lost")
	}
}

func TestSubmit_RetakeReplacesPriorResult(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	f.results.results[resultKey(100, 1)] = &model.Result{ID: 1, UserID: 100, TestID: 1, Score: 40, CanRetake: true}

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, err := f.svc.Submit(ctx, 100, 1, &model.SubmitTestRequest{
		Answers: map[string]string{"10": "4", "11": "b"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Score != 100 {
		t.Fatalf("score = %v, want 100", res.Score)
	}
	if f.results.replaced != 1 {
		t.Fatalf("expected ReplaceForRetake to run once, ran %d times", f.results.replaced)
	}
	if stored := f.results.results[resultKey(100, 1)]; stored.CanRetake {
		t.Fatal("retake flag should not carry over to the new result")
	}
}

func TestAbandon_IsIdempotent(t *testing.T) {
	f := newAttemptFixture(t)
	ctx := context.Background()

	// No attempt at all: must be a silent no-op.
	f.svc.Abandon(ctx, 100, &model.AbandonRequest{})
	if len(f.auditor.events) != 0 {
		t.Fatalf("abandon without attempt audited: %+v", f.auditor.events)
	}

	if _, err := f.svc.Start(ctx, 100, 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.svc.Abandon(ctx, 100, &model.AbandonRequest{TestID: 1})

	if att, _ := f.attempts.Get(ctx, 100); att != nil {
		t.Fatal("attempt survived abandon")
	}
	if f.auditor.countOf(model.AuditTestAbandoned) != 1 {
		t.Fatal("expected test_abandoned audit event")
	}

	// Second beacon for the same close: still fine.
	f.svc.Abandon(ctx, 100, &model.AbandonRequest{TestID: 1})
	if got := f.auditor.countOf(model.AuditTestAbandoned); got != 1 {
		t.Fatalf("duplicate abandon re-audited: %d events", got)
	}

	// No durable result was produced.
	if _, err := f.results.GetByUserAndTest(ctx, 100, 1); err != pgx.ErrNoRows {
		t.Fatalf("abandon must not create a result, got %v", err)
	}
}
