package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionTypeShortAnswer    QuestionType = "SHORT_ANSWER"
	QuestionTypeEssay          QuestionType = "ESSAY"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer, QuestionTypeEssay:
		return true
	}
	return false
}

// Answer literals offered to candidates for TRUE_FALSE questions.
const (
	TrueLiteral  = "Doğru"
	FalseLiteral = "Yanlış"
)

// OptionLabels are the multiple choice labels in display order.
var OptionLabels = []string{"A", "B", "C", "D"}

// Question is a scored exam question with its answer key.
type Question struct {
	ID            uuid.UUID         `json:"id"`
	ExamID        uuid.UUID         `json:"examId"`
	QuestionText  string            `json:"questionText"`
	QuestionType  QuestionType      `json:"questionType"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correctAnswer"`
	Points        int               `json:"points"`
	Order         int               `json:"order"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// PublicQuestion is a question as served to candidates. It has no answer key.
type PublicQuestion struct {
	ID           uuid.UUID         `json:"id"`
	QuestionText string            `json:"questionText"`
	QuestionType QuestionType      `json:"questionType"`
	Options      map[string]string `json:"options,omitempty"`
	Points       int               `json:"points"`
	Order        int               `json:"order"`
}

// Public strips the answer key.
func (q *Question) Public() PublicQuestion {
	var opts map[string]string
	if q.QuestionType == QuestionTypeMultipleChoice && len(q.Options) > 0 {
		opts = make(map[string]string, len(q.Options))
		for k, v := range q.Options {
			opts[k] = v
		}
	}
	return PublicQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      opts,
		Points:       q.Points,
		Order:        q.Order,
	}
}

// ─── Request DTOs ───────────────────────────────────────────────────

// CreateQuestionRequest is the payload for adding a single question.
type CreateQuestionRequest struct {
	QuestionText  string            `json:"questionText" binding:"required"`
	QuestionType  QuestionType      `json:"questionType" binding:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE SHORT_ANSWER ESSAY"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correctAnswer" binding:"required"`
	Points        int               `json:"points" binding:"required,min=1"`
	Order         *int              `json:"order" binding:"omitempty,min=1"`
}

// UpdateQuestionRequest is the payload for editing a question. Nil fields are unchanged.
type UpdateQuestionRequest struct {
	QuestionText  *string            `json:"questionText" binding:"omitempty,min=1"`
	QuestionType  *QuestionType      `json:"questionType" binding:"omitempty,oneof=MULTIPLE_CHOICE TRUE_FALSE SHORT_ANSWER ESSAY"`
	Options       *map[string]string `json:"options"`
	CorrectAnswer *string            `json:"correctAnswer" binding:"omitempty,min=1"`
	Points        *int               `json:"points" binding:"omitempty,min=1"`
	Order         *int               `json:"order" binding:"omitempty,min=1"`
}

// Apply merges the non-nil fields of req into q.
func (req *UpdateQuestionRequest) Apply(q *Question) {
	if req.QuestionText != nil {
		q.QuestionText = *req.QuestionText
	}
	if req.QuestionType != nil {
		q.QuestionType = *req.QuestionType
	}
	if req.Options != nil {
		q.Options = *req.Options
	}
	if req.CorrectAnswer != nil {
		q.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Points != nil {
		q.Points = *req.Points
	}
	if req.Order != nil {
		q.Order = *req.Order
	}
}
