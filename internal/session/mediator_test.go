package session

import (
	"testing"
	"time"

	"github.com/notsocj/SmartExam/internal/model"
)

func TestGuardResourceAccess(t *testing.T) {
	tests := []struct {
		name         string
		att          *model.Attempt
		wantAllowed  bool
		wantRedirect int
	}{
		{name: "no attempt allows access", att: nil, wantAllowed: true},
		{
			name:         "active attempt denies and redirects",
			att:          &model.Attempt{TestID: 7, StartedAt: time.Now()},
			wantAllowed:  false,
			wantRedirect: 7,
		},
		{
			name:         "attempt with telemetry still denies",
			att:          &model.Attempt{TestID: 3, SecurityViolations: 12},
			wantAllowed:  false,
			wantRedirect: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GuardResourceAccess(tc.att)
			if got.Allowed != tc.wantAllowed {
				t.Fatalf("Allowed = %v, want %v", got.Allowed, tc.wantAllowed)
			}
			if !got.Allowed && got.ActiveTestID != tc.wantRedirect {
				t.Fatalf("ActiveTestID = %d, want %d", got.ActiveTestID, tc.wantRedirect)
			}
		})
	}
}
