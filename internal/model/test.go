package model

import "time"

// Test represents an authored test definition.
type Test struct {
	ID                 int        `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	TimeLimitMinutes   int        `json:"time_limit_minutes"`
	LearningResourceID *int       `json:"learning_resource_id,omitempty"`
	QuestionCount      int        `json:"question_count"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateTestRequest is the payload for creating a new test.
type CreateTestRequest struct {
	Title              string `json:"title" binding:"required,min=3,max=100"`
	Description        string `json:"description" binding:"omitempty,max=2000"`
	TimeLimitMinutes   int    `json:"time_limit_minutes" binding:"required,min=1,max=480"`
	LearningResourceID *int   `json:"learning_resource_id" binding:"omitempty"`
}

// UpdateTestRequest is the payload for updating an existing test.
type UpdateTestRequest struct {
	Title              string `json:"title" binding:"omitempty,min=3,max=100"`
	Description        string `json:"description" binding:"omitempty,max=2000"`
	TimeLimitMinutes   int    `json:"time_limit_minutes" binding:"omitempty,min=1,max=480"`
	LearningResourceID *int   `json:"learning_resource_id" binding:"omitempty"`
}

// AvailableTest is a test as displayed in the student's test list, with the
// student's completion status overlaid.
type AvailableTest struct {
	Test
	Completed bool     `json:"completed"`
	ResultID  *int     `json:"result_id,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	CanRetake bool     `json:"can_retake"`
}

// TestPaper is the student-facing view of a test: questions without
// correct answers.
type TestPaper struct {
	TestID           int                  `json:"test_id"`
	Title            string               `json:"title"`
	TimeLimitMinutes int                  `json:"time_limit_minutes"`
	Questions        []QuestionForStudent `json:"questions"`
}
