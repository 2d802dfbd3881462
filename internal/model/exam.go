package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is the authoritative definition of an exam, including the answer key
// on its questions. It must never be serialized to candidates; use Public.
type Exam struct {
	ID           uuid.UUID  `json:"id"`
	ExamCode     string     `json:"examCode"`
	CourseID     uuid.UUID  `json:"courseId"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	ExamDate     *time.Time `json:"examDate,omitempty"`
	Duration     int        `json:"duration"`
	TotalScore   int        `json:"totalScore"`
	PassingScore int        `json:"passingScore"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	Questions     []Question `json:"questions,omitempty"`
	QuestionCount int        `json:"questionCount"`
	ResultCount   int        `json:"resultCount"`
}

// PublicExam is the candidate-facing projection of an exam.
type PublicExam struct {
	ID           uuid.UUID        `json:"id"`
	ExamCode     string           `json:"examCode"`
	CourseID     uuid.UUID        `json:"courseId"`
	Title        string           `json:"title"`
	Description  *string          `json:"description,omitempty"`
	ExamDate     *time.Time       `json:"examDate,omitempty"`
	Duration     int              `json:"duration"`
	TotalScore   int              `json:"totalScore"`
	PassingScore int              `json:"passingScore"`
	Questions    []PublicQuestion `json:"questions"`
}

// Public builds the candidate-facing projection, keeping question order.
func (e *Exam) Public() *PublicExam {
	p := &PublicExam{
		ID:           e.ID,
		ExamCode:     e.ExamCode,
		CourseID:     e.CourseID,
		Title:        e.Title,
		Description:  e.Description,
		ExamDate:     e.ExamDate,
		Duration:     e.Duration,
		TotalScore:   e.TotalScore,
		PassingScore: e.PassingScore,
		Questions:    make([]PublicQuestion, 0, len(e.Questions)),
	}
	for i := range e.Questions {
		p.Questions = append(p.Questions, e.Questions[i].Public())
	}
	return p
}

// DurationSeconds returns the countdown length a session starts with.
func (p *PublicExam) DurationSeconds() int {
	return p.Duration * 60
}

// Deadline returns the latest instant a submission is considered on time,
// or false when the exam has no scheduled date.
func (e *Exam) Deadline(grace time.Duration) (time.Time, bool) {
	if e.ExamDate == nil {
		return time.Time{}, false
	}
	return e.ExamDate.Add(time.Duration(e.Duration)*time.Minute + grace), true
}

// ─── Request DTOs ───────────────────────────────────────────────────

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	CourseID     string     `json:"courseId" binding:"required,uuid"`
	Title        string     `json:"title" binding:"required,max=255"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
	ExamDate     *time.Time `json:"examDate"`
	Duration     int        `json:"duration" binding:"required,min=1,max=1440"`
	TotalScore   int        `json:"totalScore" binding:"min=0"`
	PassingScore int        `json:"passingScore" binding:"min=0"`
	IsActive     *bool      `json:"isActive"`
}

// UpdateExamRequest is the payload for updating exam metadata.
// Nil fields are left unchanged. TotalScore is derived and not accepted.
type UpdateExamRequest struct {
	CourseID     *string    `json:"courseId" binding:"omitempty,uuid"`
	Title        *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
	ExamDate     *time.Time `json:"examDate"`
	Duration     *int       `json:"duration" binding:"omitempty,min=1,max=1440"`
	PassingScore *int       `json:"passingScore" binding:"omitempty,min=0"`
	IsActive     *bool      `json:"isActive"`
}

// ExamFilter narrows the admin exam list.
type ExamFilter struct {
	Search   string
	CourseID *uuid.UUID
	Page     int
	PerPage  int
}

// Course is the subset of a catalog course the exam core needs.
type Course struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
