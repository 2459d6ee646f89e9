package model

import "time"

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeIdentification QuestionType = "identification"
	QuestionTypeImage          QuestionType = "image"
)

// Question represents a single test question. Choices and ChoiceImages are
// positionally paired for multiple_choice questions; CorrectAnswer holds the
// literal choice text (not an ordinal index) so grading is plain string
// comparison.
type Question struct {
	ID            int          `json:"id"`
	TestID        int          `json:"test_id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Choices       []string     `json:"choices,omitempty"`
	ChoiceImages  []string     `json:"choice_images,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	ImagePath     *string      `json:"image_path,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// QuestionForStudent is a question stripped of its correct answer.
type QuestionForStudent struct {
	ID           int          `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Choices      []string     `json:"choices,omitempty"`
	ChoiceImages []string     `json:"choice_images,omitempty"`
	ImagePath    *string      `json:"image_path,omitempty"`
}

// ForStudent returns the student-facing projection of the question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Choices:      q.Choices,
		ChoiceImages: q.ChoiceImages,
		ImagePath:    q.ImagePath,
	}
}

// SaveQuestionRequest is the payload for creating or updating a question.
type SaveQuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType  string   `json:"question_type" binding:"required,oneof=multiple_choice identification image"`
	Choices       []string `json:"choices" binding:"omitempty,max=10,dive,max=500"`
	ChoiceImages  []string `json:"choice_images" binding:"omitempty,max=10,dive,max=255"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,max=500"`
	ImagePath     *string  `json:"image_path" binding:"omitempty,max=255"`
}
