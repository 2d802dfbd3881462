package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
)

// The interfaces below are satisfied by the repository and cache packages.

type ExamStore interface {
	Create(ctx context.Context, e *model.Exam) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	GetActiveByCode(ctx context.Context, code string) (*model.Exam, error)
	List(ctx context.Context, f model.ExamFilter) ([]model.Exam, int, error)
	Update(ctx context.Context, e *model.Exam) error
	Delete(ctx context.Context, id uuid.UUID) error
	RecalculateTotal(ctx context.Context, id uuid.UUID) (int, error)
}

type QuestionStore interface {
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	Create(ctx context.Context, q *model.Question) error
	CreateBatch(ctx context.Context, examID uuid.UUID, qs []model.Question) (int, error)
	Update(ctx context.Context, q *model.Question) (int, error)
	Delete(ctx context.Context, examID, id uuid.UUID) error
	DeleteAllByExam(ctx context.Context, examID uuid.UUID) (int, error)
}

type ResultStore interface {
	Create(ctx context.Context, res *model.ExamResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error)
	Stats(ctx context.Context, examID uuid.UUID) (*model.ResultStats, error)
	ExistsForPerson(ctx context.Context, examID, personID uuid.UUID) (bool, error)
}

type PersonStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Person, error)
	GetOrCreate(ctx context.Context, p *model.Person) (bool, error)
}

type RegistrationStore interface {
	FindForCourse(ctx context.Context, personID, courseID uuid.UUID) (*model.Registration, error)
}

type CourseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
}

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// PublicExamCache holds candidate-facing projections by exam code.
type PublicExamCache interface {
	Get(ctx context.Context, code string) (*model.PublicExam, error)
	Set(ctx context.Context, exam *model.PublicExam) error
	Invalidate(ctx context.Context, code string) error
}

// ResultPublisher announces stored results to live listeners.
type ResultPublisher interface {
	PublishResult(ctx context.Context, ev model.ResultEvent) error
}
