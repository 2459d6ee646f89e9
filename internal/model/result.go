package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// SecurityInfoKey is the reserved key in a result's raw payload holding the
// captured telemetry block. Question keys are stringified integer IDs, so
// the reserved name can never collide with them.
const SecurityInfoKey = "security_info"

// Result is the durable record of one graded test sitting. Immutable once
// written, except for the admin-controlled retake flag.
type Result struct {
	ID        int        `json:"id"`
	UserID    int        `json:"user_id"`
	TestID    int        `json:"test_id"`
	Score     float64    `json:"score"`
	DateTaken time.Time  `json:"date_taken"`
	Data      ResultData `json:"data"`
	CanRetake bool       `json:"can_retake"`
}

// QuestionRecord is the per-question entry in a result payload: the graded
// answer plus enough echoed metadata to re-render the question.
type QuestionRecord struct {
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	UserAnswer    string       `json:"user_answer"`
	CorrectAnswer string       `json:"correct_answer"`
	IsCorrect     bool         `json:"is_correct"`
	ImagePath     *string      `json:"image_path,omitempty"`
	Choices       []string     `json:"choices,omitempty"`
	ChoiceImages  []string     `json:"choice_images,omitempty"`
}

// SecurityInfo is the telemetry block captured from the attempt at submit
// time. The log keeps at most the ten most recent entries.
type SecurityInfo struct {
	Violations      int              `json:"violations"`
	TabSwitches     int              `json:"tab_switches"`
	FullscreenExits int              `json:"fullscreen_exits"`
	SecurityLog     []ViolationEntry `json:"security_log"`
}

// ResultData is the structured result payload. It serializes to a flat JSON
// object keyed by stringified question ID, with the telemetry block under
// the reserved SecurityInfoKey — the layout result views and exports read.
type ResultData struct {
	Questions map[string]QuestionRecord
	Security  SecurityInfo
}

// MarshalJSON flattens the payload into the question-id-keyed wire layout.
func (d ResultData) MarshalJSON() ([]byte, error) {
	flat := make(map[string]json.RawMessage, len(d.Questions)+1)
	for id, rec := range d.Questions {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal question %s: %w", id, err)
		}
		flat[id] = raw
	}
	raw, err := json.Marshal(d.Security)
	if err != nil {
		return nil, fmt.Errorf("marshal security info: %w", err)
	}
	flat[SecurityInfoKey] = raw
	return json.Marshal(flat)
}

// UnmarshalJSON rebuilds the typed payload from the flat wire layout.
func (d *ResultData) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	d.Questions = make(map[string]QuestionRecord, len(flat))
	for key, raw := range flat {
		if key == SecurityInfoKey {
			if err := json.Unmarshal(raw, &d.Security); err != nil {
				return fmt.Errorf("unmarshal security info: %w", err)
			}
			continue
		}
		var rec QuestionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("unmarshal question %s: %w", key, err)
		}
		d.Questions[key] = rec
	}
	return nil
}

// SubmitTestRequest is the payload for submitting a test: answers keyed by
// stringified question ID. Telemetry is NOT read from this payload — the
// attempt state captured via heartbeats is authoritative at submit time.
type SubmitTestRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// StudentRecordSummary aggregates a student's result history for the admin
// records view.
type StudentRecordSummary struct {
	Student      User     `json:"student"`
	Results      []Result `json:"results"`
	TestsTaken   int      `json:"tests_taken"`
	AverageScore float64  `json:"average_score"`
	BestScore    float64  `json:"best_score"`
}
