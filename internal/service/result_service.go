package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
)

// ExamResults is the admin view of one exam's results.
type ExamResults struct {
	ExamID       uuid.UUID          `json:"examId"`
	Title        string             `json:"title"`
	TotalScore   int                `json:"totalScore"`
	PassingScore int                `json:"passingScore"`
	Results      []model.ExamResult `json:"results"`
	Stats        *model.ResultStats `json:"stats"`
}

// ResultService serves stored results to administrators.
type ResultService struct {
	results ResultStore
	exams   ExamStore
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultStore, exams ExamStore) *ResultService {
	return &ResultService{results: results, exams: exams}
}

// ListByExam returns all results of an exam, newest first, with aggregates.
func (s *ResultService) ListByExam(ctx context.Context, examID uuid.UUID) (*ExamResults, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	results, err := s.results.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	stats, err := s.results.Stats(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("result stats: %w", err)
	}
	if results == nil {
		results = []model.ExamResult{}
	}

	return &ExamResults{
		ExamID:       exam.ID,
		Title:        exam.Title,
		TotalScore:   exam.TotalScore,
		PassingScore: exam.PassingScore,
		Results:      results,
		Stats:        stats,
	}, nil
}

// Get returns one result with its answer audit trail.
func (s *ResultService) Get(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	res, err := s.results.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}
