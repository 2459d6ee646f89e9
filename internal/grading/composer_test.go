package grading

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/notsocj/SmartExam/internal/model"
)

func sampleQuestions() []model.Question {
	return []model.Question{
		{
			ID:            1,
			QuestionText:  "What is 2+2?",
			QuestionType:  model.QuestionTypeIdentification,
			CorrectAnswer: "4",
		},
		{
			ID:            2,
			QuestionText:  "Pick the right one",
			QuestionType:  model.QuestionTypeMultipleChoice,
			Choices:       []string{"wrong", "right"},
			CorrectAnswer: "right",
		},
	}
}

func TestCompose_ScoreAndEntries(t *testing.T) {
	tests := []struct {
		name      string
		answers   map[string]string
		wantScore float64
		wantOK    map[string]bool
	}{
		{
			name:      "all correct",
			answers:   map[string]string{"1": "4", "2": "right"},
			wantScore: 100,
			wantOK:    map[string]bool{"1": true, "2": true},
		},
		{
			name:      "half correct",
			answers:   map[string]string{"1": "4", "2": "wrong"},
			wantScore: 50,
			wantOK:    map[string]bool{"1": true, "2": false},
		},
		{
			name:      "missing answers grade incorrect",
			answers:   map[string]string{},
			wantScore: 0,
			wantOK:    map[string]bool{"1": false, "2": false},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, score := Compose(sampleQuestions(), tc.answers, model.SecurityInfo{})
			if score != tc.wantScore {
				t.Fatalf("score = %v, want %v", score, tc.wantScore)
			}
			if len(data.Questions) != 2 {
				t.Fatalf("expected 2 question entries, got %d", len(data.Questions))
			}
			for id, want := range tc.wantOK {
				rec, ok := data.Questions[id]
				if !ok {
					t.Fatalf("missing record for question %s", id)
				}
				if rec.IsCorrect != want {
					t.Fatalf("question %s is_correct = %v, want %v", id, rec.IsCorrect, want)
				}
			}
		})
	}
}

func TestCompose_MissingAnswerEchoedEmpty(t *testing.T) {
	data, _ := Compose(sampleQuestions(), map[string]string{"1": "4"}, model.SecurityInfo{})
	if rec := data.Questions["2"]; rec.UserAnswer != "" {
		t.Fatalf("expected empty user answer, got %q", rec.UserAnswer)
	}
}

func TestCompose_ChoiceEchoOnlyForMultipleChoice(t *testing.T) {
	data, _ := Compose(sampleQuestions(), nil, model.SecurityInfo{})

	if rec := data.Questions["2"]; len(rec.Choices) != 2 {
		t.Fatalf("expected echoed choices on multiple_choice record, got %v", rec.Choices)
	}
	if rec := data.Questions["1"]; rec.Choices != nil {
		t.Fatalf("expected no choices on identification record, got %v", rec.Choices)
	}
}

func TestCompose_TelemetryTruncatedToMostRecent(t *testing.T) {
	entries := make([]model.ViolationEntry, 25)
	for i := range entries {
		entries[i] = model.ViolationEntry{Type: "tab_switch", Timestamp: strconv.Itoa(i), TestID: 5}
	}
	telemetry := model.SecurityInfo{Violations: 25, SecurityLog: entries}

	data, _ := Compose(sampleQuestions(), nil, telemetry)

	if len(data.Security.SecurityLog) != ResultLogCap {
		t.Fatalf("expected %d log entries, got %d", ResultLogCap, len(data.Security.SecurityLog))
	}
	// Most recent entries retained, order preserved.
	if got := data.Security.SecurityLog[0].Timestamp; got != "15" {
		t.Fatalf("expected oldest retained entry 15, got %s", got)
	}
	if got := data.Security.SecurityLog[ResultLogCap-1].Timestamp; got != "24" {
		t.Fatalf("expected newest entry 24, got %s", got)
	}
	if data.Security.Violations != 25 {
		t.Fatalf("violations = %d, want 25", data.Security.Violations)
	}
}

func TestResultData_RoundTripLayout(t *testing.T) {
	data, score := Compose(sampleQuestions(), map[string]string{"1": " 4 ", "2": "RIGHT"}, model.SecurityInfo{
		Violations:  2,
		TabSwitches: 1,
	})
	if score != 100 {
		t.Fatalf("score = %v, want 100", score)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Wire layout: flat object keyed by question id plus the reserved key.
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(raw, &flat); err != nil {
		t.Fatalf("unmarshal flat: %v", err)
	}
	if _, ok := flat[model.SecurityInfoKey]; !ok {
		t.Fatalf("missing reserved %s key", model.SecurityInfoKey)
	}
	if len(flat) != 3 {
		t.Fatalf("expected 2 question keys + telemetry, got %d keys", len(flat))
	}

	var back model.ResultData
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal typed: %v", err)
	}
	if back.Security.Violations != 2 || back.Security.TabSwitches != 1 {
		t.Fatalf("telemetry lost in round trip: %+v", back.Security)
	}
	if !back.Questions["1"].IsCorrect || !back.Questions["2"].IsCorrect {
		t.Fatal("question verdicts lost in round trip")
	}
}

func TestCompose_ScoreAlwaysInRange(t *testing.T) {
	for n := 1; n <= 7; n++ {
		questions := make([]model.Question, n)
		for i := range questions {
			questions[i] = model.Question{ID: i + 1, CorrectAnswer: "x", QuestionType: model.QuestionTypeIdentification}
		}
		answers := map[string]string{"1": "x"} // exactly one correct
		data, score := Compose(questions, answers, model.SecurityInfo{})
		if score < 0 || score > 100 {
			t.Fatalf("n=%d: score %v out of range", n, score)
		}
		if len(data.Questions) != n {
			t.Fatalf("n=%d: expected %d entries, got %d", n, n, len(data.Questions))
		}
		want := 100 / float64(n)
		if diff := score - want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("n=%d: score %v, want %v", n, score, want)
		}
	}
}
