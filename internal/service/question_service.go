package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/importer"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
	"github.com/rs/zerolog"
)

// ImportSummary reports a committed import.
type ImportSummary struct {
	Count       int `json:"count"`
	TotalPoints int `json:"totalPoints"`
}

// QuestionService handles question authoring. Every mutation keeps the exam
// total in step with question points and drops the cached public projection.
type QuestionService struct {
	questions QuestionStore
	exams     ExamStore
	cache     PublicExamCache
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore, exams ExamStore, cache PublicExamCache, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		exams:     exams,
		cache:     cache,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// List returns the questions of an exam in display order.
func (s *QuestionService) List(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	if _, err := s.getExam(ctx, examID); err != nil {
		return nil, err
	}
	qs, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return qs, nil
}

// Get returns a single question with its answer key.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// Add validates and appends one question. Without an explicit order it goes
// after the current last question.
func (s *QuestionService) Add(ctx context.Context, examID uuid.UUID, req *model.CreateQuestionRequest) (*model.Question, error) {
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	q := &model.Question{
		ExamID:        examID,
		QuestionText:  req.QuestionText,
		QuestionType:  req.QuestionType,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
	}
	if req.Order != nil {
		q.Order = *req.Order
	}
	if vs := importer.Check(q); len(vs) > 0 {
		return nil, &QuestionValidationError{Violations: vs}
	}

	if err := s.questions.Create(ctx, q); err != nil {
		return nil, s.mapWriteErr(err, ErrExamNotFound)
	}
	s.invalidate(ctx, exam.ExamCode)
	return q, nil
}

// Import validates every row and inserts all of them or none. Row errors are
// returned together in an *ImportError.
func (s *QuestionService) Import(ctx context.Context, examID uuid.UUID, rows []importer.Row) (*ImportSummary, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	exam, err := s.getExam(ctx, examID)
	if err != nil {
		return nil, err
	}

	qs, rowErrs := importer.Validate(rows)
	if len(rowErrs) > 0 {
		return nil, &ImportError{Rows: rowErrs}
	}

	added, err := s.questions.CreateBatch(ctx, examID, qs)
	if err != nil {
		return nil, s.mapWriteErr(err, ErrExamNotFound)
	}
	s.invalidate(ctx, exam.ExamCode)

	s.log.Info().Str("exam_id", examID.String()).Int("count", len(qs)).Int("points", added).Msg("Questions imported")
	return &ImportSummary{Count: len(qs), TotalPoints: added}, nil
}

// Update applies the non-nil fields of req and re-validates the result.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(q)
	if vs := importer.Check(q); len(vs) > 0 {
		return nil, &QuestionValidationError{Violations: vs}
	}

	if _, err := s.questions.Update(ctx, q); err != nil {
		return nil, s.mapWriteErr(err, ErrQuestionNotFound)
	}
	s.afterTotalChange(ctx, q.ExamID)
	return q, nil
}

// Delete removes a question and takes its points off the exam total.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	q, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questions.Delete(ctx, q.ExamID, id); err != nil {
		return s.mapWriteErr(err, ErrQuestionNotFound)
	}
	s.afterTotalChange(ctx, q.ExamID)
	return nil
}

// DeleteAll removes every question of an exam and resets its total to zero.
func (s *QuestionService) DeleteAll(ctx context.Context, examID uuid.UUID) (int, error) {
	if _, err := s.getExam(ctx, examID); err != nil {
		return 0, err
	}
	n, err := s.questions.DeleteAllByExam(ctx, examID)
	if err != nil {
		return 0, s.mapWriteErr(err, ErrExamNotFound)
	}
	s.afterTotalChange(ctx, examID)
	s.log.Info().Str("exam_id", examID.String()).Int("count", n).Msg("All questions deleted")
	return n, nil
}

// ─── helpers ────────────────────────────────────────────────────────

func (s *QuestionService) getExam(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

func (s *QuestionService) mapWriteErr(err error, notFound error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicateOrder):
		return ErrDuplicateOrder
	}
	return fmt.Errorf("write question: %w", err)
}

// afterTotalChange re-reads the exam after a write that may lower its total.
// The write stands even when the passing score is now out of reach; authors
// get a warning and fix it with an exam update.
func (s *QuestionService) afterTotalChange(ctx context.Context, examID uuid.UUID) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Could not resolve exam for cache invalidation")
		return
	}
	s.invalidate(ctx, exam.ExamCode)
	if exam.PassingScore > exam.TotalScore {
		s.log.Warn().
			Str("exam_id", examID.String()).
			Int("passing_score", exam.PassingScore).
			Int("total_score", exam.TotalScore).
			Msg("Passing score exceeds exam total")
	}
}

func (s *QuestionService) invalidate(ctx context.Context, code string) {
	if err := s.cache.Invalidate(ctx, code); err != nil {
		s.log.Warn().Err(err).Str("exam_code", code).Msg("Public exam cache invalidation failed")
	}
}
