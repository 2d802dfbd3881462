package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/cache"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
	"github.com/istanbulinstitute/educrm-exam/internal/response"
	"github.com/rs/zerolog"
)

// ExamService handles exam administration and the public exam read path.
type ExamService struct {
	exams       ExamStore
	questions   QuestionStore
	courses     CourseStore
	cache       PublicExamCache
	eligibility *Eligibility
	codes       CodeGenerator
	maxAttempts int
	log         zerolog.Logger
}

// NewExamService creates a new ExamService. Codes are drawn from codes and
// creation gives up after maxAttempts collisions.
func NewExamService(
	exams ExamStore,
	questions QuestionStore,
	courses CourseStore,
	cache PublicExamCache,
	eligibility *Eligibility,
	codes CodeGenerator,
	maxAttempts int,
	log zerolog.Logger,
) *ExamService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ExamService{
		exams:       exams,
		questions:   questions,
		courses:     courses,
		cache:       cache,
		eligibility: eligibility,
		codes:       codes,
		maxAttempts: maxAttempts,
		log:         log.With().Str("component", "exam_service").Logger(),
	}
}

// ─── Administration ─────────────────────────────────────────────────

// Create inserts a new exam under a freshly allocated code. The stored
// totalScore starts at zero and follows the questions; a declared total in
// the request only bounds the passing score.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	courseID, err := uuid.Parse(req.CourseID)
	if err != nil {
		return nil, ErrCourseNotFound
	}
	if err := s.ensureCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if req.PassingScore > req.TotalScore && req.TotalScore > 0 {
		return nil, ErrPassingScoreTooHigh
	}

	exam := &model.Exam{
		CourseID:     courseID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		ExamDate:     req.ExamDate,
		Duration:     req.Duration,
		PassingScore: req.PassingScore,
		IsActive:     true,
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.codes()
		if err != nil {
			return nil, fmt.Errorf("generate exam code: %w", err)
		}
		exam.ExamCode = code

		err = s.exams.Create(ctx, exam)
		if err == nil {
			s.log.Info().Str("exam_id", exam.ID.String()).Str("exam_code", code).Msg("Exam created")
			exam.Questions = []model.Question{}
			return exam, nil
		}
		if !errors.Is(err, repository.ErrDuplicateExamCode) {
			if errors.Is(err, repository.ErrInvalidReference) {
				return nil, ErrCourseNotFound
			}
			return nil, fmt.Errorf("create exam: %w", err)
		}
		s.log.Debug().Int("attempt", attempt).Str("exam_code", code).Msg("Exam code collision, retrying")
	}
	return nil, ErrExamCodeExhausted
}

// Get returns an exam with its ordered questions, answer keys included.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.getExam(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByExam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	exam.Questions = questions
	exam.QuestionCount = len(questions)
	return exam, nil
}

// List returns a page of exams matching the filter.
func (s *ExamService) List(ctx context.Context, f model.ExamFilter) ([]model.Exam, *response.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 10
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}

	exams, total, err := s.exams.List(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, response.NewPagination(f.Page, f.PerPage, total), nil
}

// Update applies the non-nil fields of req. A passing score above a non-zero
// total is rejected.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.getExam(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CourseID != nil {
		courseID, err := uuid.Parse(*req.CourseID)
		if err != nil {
			return nil, ErrCourseNotFound
		}
		if courseID != exam.CourseID {
			if err := s.ensureCourse(ctx, courseID); err != nil {
				return nil, err
			}
			exam.CourseID = courseID
		}
	}
	if req.Title != nil {
		exam.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.ExamDate != nil {
		exam.ExamDate = req.ExamDate
	}
	if req.Duration != nil {
		exam.Duration = *req.Duration
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
	if exam.TotalScore > 0 && exam.PassingScore > exam.TotalScore {
		return nil, ErrPassingScoreTooHigh
	}

	if err := s.exams.Update(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("update exam: %w", err)
	}
	s.invalidate(ctx, exam.ExamCode)
	return exam, nil
}

// Delete removes an exam with its questions and results.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	exam, err := s.getExam(ctx, id)
	if err != nil {
		return err
	}
	if err := s.exams.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExamNotFound
		}
		return fmt.Errorf("delete exam: %w", err)
	}
	s.invalidate(ctx, exam.ExamCode)
	s.log.Info().Str("exam_id", id.String()).Msg("Exam deleted")
	return nil
}

// RecalculateTotal resets the exam total to the sum of its question points.
func (s *ExamService) RecalculateTotal(ctx context.Context, id uuid.UUID) (int, error) {
	exam, err := s.getExam(ctx, id)
	if err != nil {
		return 0, err
	}
	total, err := s.exams.RecalculateTotal(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("recalculate total: %w", err)
	}
	if total != exam.TotalScore {
		s.log.Warn().Str("exam_id", id.String()).Int("stored", exam.TotalScore).Int("actual", total).
			Msg("Exam total score drifted from question points")
	}
	s.invalidate(ctx, exam.ExamCode)
	return total, nil
}

// ─── Public read path ───────────────────────────────────────────────

// GetPublicByCode returns the candidate projection of an active exam. When
// email is non-empty the candidate's eligibility is checked as well.
func (s *ExamService) GetPublicByCode(ctx context.Context, code, email string) (*model.PublicExam, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrPublicExamNotFound
	}

	public, err := s.cache.Get(ctx, code)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Str("exam_code", code).Msg("Public exam cache read failed")
		}
		if public, err = s.loadPublic(ctx, code); err != nil {
			return nil, err
		}
	}

	if email = strings.TrimSpace(email); email != "" {
		if err := s.eligibility.Check(ctx, public.ID, public.CourseID, email); err != nil {
			return nil, err
		}
	}
	return public, nil
}

func (s *ExamService) loadPublic(ctx context.Context, code string) (*model.PublicExam, error) {
	exam, err := s.exams.GetActiveByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPublicExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam by code: %w", err)
	}
	questions, err := s.questions.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	exam.Questions = questions

	public := exam.Public()
	if err := s.cache.Set(ctx, public); err != nil {
		s.log.Warn().Err(err).Str("exam_code", code).Msg("Public exam cache write failed")
	}
	return public, nil
}

// ─── helpers ────────────────────────────────────────────────────────

func (s *ExamService) getExam(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

func (s *ExamService) ensureCourse(ctx context.Context, id uuid.UUID) error {
	_, err := s.courses.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCourseNotFound
	}
	if err != nil {
		return fmt.Errorf("get course: %w", err)
	}
	return nil
}

func (s *ExamService) invalidate(ctx context.Context, code string) {
	if err := s.cache.Invalidate(ctx, code); err != nil {
		s.log.Warn().Err(err).Str("exam_code", code).Msg("Public exam cache invalidation failed")
	}
}
