package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/notsocj/SmartExam/internal/response"
	"github.com/notsocj/SmartExam/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorEnvelope struct {
	Error struct {
		Code       string `json:"code"`
		RedirectTo string `json:"redirect_to"`
	} `json:"error"`
}

// Starting a second test while one is active must point the caller back
// at the attempt it already has open, the same shape the resource lock
// uses.
func TestFailFromService_ActiveAttemptRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	failFromService(c, &service.ActiveAttemptError{ActiveTestID: 42})

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}

	var body errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode: %v", err)
	}
	if body.Error.Code != string(response.ErrAttemptInProgress) {
		t.Errorf("code = %q, want %q", body.Error.Code, response.ErrAttemptInProgress)
	}
	if want := "/portal/tests/42/take"; body.Error.RedirectTo != want {
		t.Errorf("redirect_to = %q, want %q", body.Error.RedirectTo, want)
	}
}

func TestFailFromService_SentinelMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   response.ErrCode
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound, response.ErrNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, response.ErrForbidden},
		{"already completed", service.ErrAlreadyCompleted, http.StatusConflict, response.ErrAlreadyCompleted},
		{"no active attempt", service.ErrNoActiveAttempt, http.StatusConflict, response.ErrNoActiveAttempt},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			failFromService(c, tc.err)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			var body errorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("json decode: %v", err)
			}
			if body.Error.Code != string(tc.code) {
				t.Errorf("code = %q, want %q", body.Error.Code, tc.code)
			}
			if body.Error.RedirectTo != "" {
				t.Errorf("unexpected redirect_to %q", body.Error.RedirectTo)
			}
		})
	}
}
