package grading

import (
	"testing"

	"github.com/notsocj/SmartExam/internal/model"
)

func TestGrade_Normalization(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		answer  string
		want    bool
	}{
		{name: "exact match", correct: "Four", answer: "Four", want: true},
		{name: "case insensitive", correct: "Four", answer: "four", want: true},
		{name: "surrounding whitespace", correct: "Four", answer: " Four ", want: true},
		{name: "case and whitespace", correct: "Four", answer: "  FOUR\t", want: true},
		{name: "wrong answer", correct: "Four", answer: "five", want: false},
		{name: "empty answer", correct: "Four", answer: "", want: false},
		{name: "whitespace only", correct: "Four", answer: "   ", want: false},
		{name: "internal whitespace differs", correct: "New York", answer: "NewYork", want: false},
		{name: "correct answer padded by author", correct: " Paris ", answer: "paris", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := &model.Question{CorrectAnswer: tc.correct, QuestionType: model.QuestionTypeIdentification}
			if got := Grade(q, tc.answer); got != tc.want {
				t.Fatalf("Grade(%q, %q) = %v, want %v", tc.correct, tc.answer, got, tc.want)
			}
		})
	}
}

func TestGrade_MultipleChoiceUsesChoiceText(t *testing.T) {
	q := &model.Question{
		QuestionType:  model.QuestionTypeMultipleChoice,
		Choices:       []string{"Mercury", "Venus", "Earth"},
		CorrectAnswer: "Venus",
	}

	if !Grade(q, "venus") {
		t.Fatal("expected literal choice text to grade correct")
	}
	// Ordinal indexes are not answers.
	if Grade(q, "1") {
		t.Fatal("expected ordinal index to grade incorrect")
	}
}
