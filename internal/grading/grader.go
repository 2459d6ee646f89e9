// Package grading implements deterministic answer grading and result
// composition. Everything here is pure: no storage, no clock, no logging.
package grading

import (
	"strings"

	"github.com/notsocj/SmartExam/internal/model"
)

// Grade reports whether the submitted answer matches the question's correct
// answer. Comparison is whitespace-trimmed and case-insensitive for every
// question type; multiple_choice answers carry the literal choice text, so
// the same rule applies. An empty or absent answer is simply incorrect.
func Grade(q *model.Question, answer string) bool {
	return normalize(answer) == normalize(q.CorrectAnswer)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
