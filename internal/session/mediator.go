package session

import "github.com/notsocj/SmartExam/internal/model"

// Decision is the outcome of mediating a learning-resource request.
type Decision struct {
	Allowed bool
	// ActiveTestID is the test the caller should be redirected back into
	// when access is denied.
	ActiveTestID int
}

// GuardResourceAccess decides whether a learning-resource route may be
// served given the caller's attempt state. Pure function: a nil attempt
// (no test in progress) allows access; an active attempt denies it and
// points back at the test's resume view. Every learning-resource handler —
// including raw file serving — must consult this before executing.
func GuardResourceAccess(att *model.Attempt) Decision {
	if att == nil {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, ActiveTestID: att.TestID}
}
