package grading

import (
	"strconv"

	"github.com/notsocj/SmartExam/internal/model"
)

// ResultLogCap bounds how many violation entries are persisted into the
// result payload (the attempt log itself keeps up to 100).
const ResultLogCap = 10

// Compose grades every question in order against the submitted answers and
// assembles the persistable result payload. Missing answers grade as empty
// strings. The telemetry block is stored under the reserved key; the score
// is 100 * correct / total. Callers must not pass an empty question list —
// the session guard refuses to start or submit a questionless test.
func Compose(questions []model.Question, answersByID map[string]string, telemetry model.SecurityInfo) (*model.ResultData, float64) {
	data := &model.ResultData{
		Questions: make(map[string]model.QuestionRecord, len(questions)),
	}

	correct := 0
	for i := range questions {
		q := &questions[i]
		key := strconv.Itoa(q.ID)
		answer := answersByID[key]

		isCorrect := Grade(q, answer)
		if isCorrect {
			correct++
		}

		rec := model.QuestionRecord{
			QuestionText:  q.QuestionText,
			QuestionType:  q.QuestionType,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			ImagePath:     q.ImagePath,
		}
		if q.QuestionType == model.QuestionTypeMultipleChoice {
			rec.Choices = q.Choices
			rec.ChoiceImages = q.ChoiceImages
		}
		data.Questions[key] = rec
	}

	if len(telemetry.SecurityLog) > ResultLogCap {
		telemetry.SecurityLog = telemetry.SecurityLog[len(telemetry.SecurityLog)-ResultLogCap:]
	}
	if telemetry.SecurityLog == nil {
		telemetry.SecurityLog = []model.ViolationEntry{}
	}
	data.Security = telemetry

	var score float64
	if len(questions) > 0 {
		score = float64(correct) / float64(len(questions)) * 100
	}
	return data, score
}
