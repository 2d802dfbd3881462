package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/grading"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
	"github.com/rs/zerolog"
)

// ErrInvalidSubmission is returned when the exam id or candidate identity is missing.
var ErrInvalidSubmission = errors.New("submission incomplete")

// DeadlinePolicy controls late-submission rejection.
type DeadlinePolicy struct {
	Enforce bool
	Grace   time.Duration
}

// SubmissionService grades a finished attempt and stores its single result.
type SubmissionService struct {
	exams     ExamStore
	questions QuestionStore
	persons   PersonStore
	results   ResultStore
	publisher ResultPublisher
	ownerID   uuid.UUID
	deadline  DeadlinePolicy
	now       func() time.Time
	log       zerolog.Logger
}

// NewSubmissionService creates a SubmissionService. ownerID is the system
// owner that new candidates are attributed to; it is resolved at startup.
func NewSubmissionService(
	exams ExamStore,
	questions QuestionStore,
	persons PersonStore,
	results ResultStore,
	publisher ResultPublisher,
	ownerID uuid.UUID,
	deadline DeadlinePolicy,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		exams:     exams,
		questions: questions,
		persons:   persons,
		results:   results,
		publisher: publisher,
		ownerID:   ownerID,
		deadline:  deadline,
		now:       time.Now,
		log:       log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit grades the answers and persists the result. A second submission
// for the same exam and candidate fails with ErrAlreadySubmitted, including
// when both arrive at once. The returned result carries no message.
func (s *SubmissionService) Submit(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResult, error) {
	examID, info, err := checkSubmission(req)
	if err != nil {
		return nil, err
	}

	exam, err := s.exams.GetByID(ctx, examID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if !exam.IsActive {
		return nil, ErrExamNotFound
	}
	if s.deadline.Enforce {
		if deadline, ok := exam.Deadline(s.deadline.Grace); ok && s.now().After(deadline) {
			return nil, ErrExamTimeExpired
		}
	}

	questions, err := s.questions.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	person := &model.Person{
		FirstName:   info.FirstName,
		LastName:    info.LastName,
		Email:       info.Email,
		CreatedByID: s.ownerID,
	}
	created, err := s.persons.GetOrCreate(ctx, person)
	if err != nil {
		return nil, fmt.Errorf("resolve candidate: %w", err)
	}
	if created {
		s.log.Info().Str("person_id", person.ID.String()).Msg("Candidate created from submission")
	}

	outcome := grading.Grade(questions, req.Answers)
	result := &model.ExamResult{
		ExamID:   examID,
		PersonID: person.ID,
		Score:    outcome.Score,
		IsPassed: outcome.Passed(exam.PassingScore),
		Answers:  outcome.Details,
	}
	if err := s.results.Create(ctx, result); err != nil {
		if errors.Is(err, repository.ErrDuplicateResult) {
			return nil, ErrAlreadySubmitted
		}
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Str("result_id", result.ID.String()).
		Int("score", result.Score).
		Bool("passed", result.IsPassed).
		Msg("Submission graded")

	if s.publisher != nil {
		ev := model.ResultEvent{
			ResultID:  result.ID,
			ExamID:    examID,
			Person:    person.Summary(),
			Score:     result.Score,
			IsPassed:  result.IsPassed,
			CreatedAt: result.CreatedAt,
		}
		if err := s.publisher.PublishResult(ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("result_id", result.ID.String()).Msg("Result event not published")
		}
	}

	return &model.SubmitResult{
		ResultID:     result.ID,
		Score:        result.Score,
		TotalScore:   exam.TotalScore,
		PassingScore: exam.PassingScore,
		IsPassed:     result.IsPassed,
	}, nil
}

func checkSubmission(req *model.SubmitRequest) (uuid.UUID, model.CandidateInfo, error) {
	if req == nil || req.StudentInfo == nil || req.Answers == nil {
		return uuid.Nil, model.CandidateInfo{}, ErrInvalidSubmission
	}
	examID, err := uuid.Parse(req.ExamID)
	if err != nil {
		return uuid.Nil, model.CandidateInfo{}, ErrInvalidSubmission
	}
	info := model.CandidateInfo{
		FirstName: strings.TrimSpace(req.StudentInfo.FirstName),
		LastName:  strings.TrimSpace(req.StudentInfo.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.StudentInfo.Email)),
	}
	if info.FirstName == "" || info.LastName == "" || info.Email == "" {
		return uuid.Nil, model.CandidateInfo{}, ErrInvalidSubmission
	}
	return examID, info, nil
}
