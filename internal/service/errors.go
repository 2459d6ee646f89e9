package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Handlers map these onto wire
// error codes.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")

	ErrNoQuestions       = errors.New("test has no questions")
	ErrAlreadyCompleted  = errors.New("test already completed")
	ErrAttemptInProgress = errors.New("another test attempt is in progress")
	ErrNoActiveAttempt   = errors.New("no active test attempt")
	ErrTestIDMismatch    = errors.New("request targets a different test than the active attempt")
)

// ActiveAttemptError rejects starting a test while an attempt on another
// test is active. It carries the active test's id so the caller can be
// sent back into that attempt. Matches ErrAttemptInProgress under
// errors.Is.
type ActiveAttemptError struct {
	ActiveTestID int
}

func (e *ActiveAttemptError) Error() string {
	return fmt.Sprintf("attempt in progress on test %d", e.ActiveTestID)
}

func (e *ActiveAttemptError) Is(target error) bool {
	return target == ErrAttemptInProgress
}
