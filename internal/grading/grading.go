// Package grading scores a candidate's answers against an exam's answer key.
//
// Grading is total over well-formed input: unanswered questions and essays
// are defined outcomes, never errors.
package grading

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/istanbulinstitute/educrm-exam/internal/model"
)

// Outcome is the graded result of one submission.
type Outcome struct {
	Score    int
	MaxScore int
	Details  []model.AnswerDetail
}

// Passed reports whether the outcome meets the passing threshold (inclusive).
func (o Outcome) Passed(passingScore int) bool {
	return o.Score >= passingScore
}

// Grade scores every question independently. Details follow question order.
// answers is keyed by question ID string.
func Grade(questions []model.Question, answers map[string]string) Outcome {
	out := Outcome{Details: make([]model.AnswerDetail, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		ans, ok := answers[q.ID.String()]
		d := Question(q, ans, ok)
		out.Score += d.EarnedPoints
		out.MaxScore += d.MaxPoints
		out.Details = append(out.Details, d)
	}
	return out
}

// Question grades a single answer. answered is false when the candidate left
// the question out of the submission.
func Question(q *model.Question, answer string, answered bool) model.AnswerDetail {
	d := model.AnswerDetail{
		QuestionID:    q.ID,
		QuestionType:  q.QuestionType,
		CorrectAnswer: q.CorrectAnswer,
		MaxPoints:     q.Points,
	}
	if answered {
		a := answer
		d.StudentAnswer = &a
	}

	switch q.QuestionType {
	case model.QuestionTypeEssay:
		d.NeedsReview = answered && strings.TrimSpace(answer) != ""
		return d
	case model.QuestionTypeShortAnswer:
		d.IsCorrect = answered && normalize(answer) == normalize(q.CorrectAnswer)
	case model.QuestionTypeMultipleChoice, model.QuestionTypeTrueFalse:
		d.IsCorrect = answered && answer == q.CorrectAnswer
	}

	if d.IsCorrect {
		d.EarnedPoints = q.Points
	}
	return d
}

// normalize trims and case-folds a short answer. A Caser is not safe for
// concurrent use, so one is built per call.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
