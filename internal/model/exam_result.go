package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerDetail is the per-question audit record stored with a result.
type AnswerDetail struct {
	QuestionID    uuid.UUID    `json:"questionId"`
	QuestionType  QuestionType `json:"questionType"`
	StudentAnswer *string      `json:"studentAnswer"`
	CorrectAnswer string       `json:"correctAnswer"`
	IsCorrect     bool         `json:"isCorrect"`
	EarnedPoints  int          `json:"earnedPoints"`
	MaxPoints     int          `json:"maxPoints"`
	NeedsReview   bool         `json:"needsReview,omitempty"`
}

// ExamResult is the single graded attempt of a person on an exam.
type ExamResult struct {
	ID        uuid.UUID      `json:"id"`
	ExamID    uuid.UUID      `json:"examId"`
	PersonID  uuid.UUID      `json:"personId"`
	Score     int            `json:"score"`
	IsPassed  bool           `json:"isPassed"`
	Answers   []AnswerDetail `json:"answers"`
	CreatedAt time.Time      `json:"createdAt"`

	Person *PersonSummary `json:"person,omitempty"`
}

// PersonSummary is the candidate subset shown next to a result.
type PersonSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
}

// ResultStats aggregates the results of one exam.
type ResultStats struct {
	Total        int     `json:"total"`
	Passed       int     `json:"passed"`
	Failed       int     `json:"failed"`
	PassRate     float64 `json:"passRate"`
	AverageScore float64 `json:"averageScore"`
	HighestScore int     `json:"highestScore"`
	LowestScore  int     `json:"lowestScore"`
}

// ─── Submission contract ────────────────────────────────────────────

// CandidateInfo identifies the person taking a public exam.
type CandidateInfo struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
}

// SubmitRequest is the payload sent once when a candidate finishes an exam.
type SubmitRequest struct {
	ExamID      string            `json:"examId" binding:"required,uuid"`
	StudentInfo *CandidateInfo    `json:"studentInfo" binding:"required"`
	Answers     map[string]string `json:"answers" binding:"required"`
}

// SubmitResult is returned to the candidate after grading.
type SubmitResult struct {
	ResultID     uuid.UUID `json:"resultId"`
	Score        int       `json:"score"`
	TotalScore   int       `json:"totalScore"`
	PassingScore int       `json:"passingScore"`
	IsPassed     bool      `json:"isPassed"`
	Message      string    `json:"message"`
}

// ResultEvent is published whenever a new result is stored.
type ResultEvent struct {
	ResultID  uuid.UUID     `json:"resultId"`
	ExamID    uuid.UUID     `json:"examId"`
	Person    PersonSummary `json:"person"`
	Score     int           `json:"score"`
	IsPassed  bool          `json:"isPassed"`
	CreatedAt time.Time     `json:"createdAt"`
}
