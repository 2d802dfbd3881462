package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamResultRepository handles graded result data access.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

// Create stores a result. A second result for the same exam and person fails
// with ErrDuplicateResult; the unique constraint settles concurrent submissions.
func (r *ExamResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_results (exam_id, person_id, score, is_passed, answers)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		res.ExamID, res.PersonID, res.Score, res.IsPassed, res.Answers,
	).Scan(&res.ID, &res.CreatedAt)
	return translate(err)
}

const resultColumns = `r.id, r.exam_id, r.person_id, r.score, r.is_passed, r.answers, r.created_at,
	p.first_name, p.last_name, p.email`

func scanResult(row pgx.Row) (*model.ExamResult, error) {
	res := &model.ExamResult{Person: &model.PersonSummary{}}
	err := row.Scan(&res.ID, &res.ExamID, &res.PersonID, &res.Score, &res.IsPassed, &res.Answers, &res.CreatedAt,
		&res.Person.FirstName, &res.Person.LastName, &res.Person.Email)
	if err != nil {
		return nil, translate(err)
	}
	res.Person.ID = res.PersonID
	return res, nil
}

// GetByID retrieves a result with its candidate.
func (r *ExamResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+`
		 FROM exam_results r JOIN persons p ON p.id = r.person_id
		 WHERE r.id = $1`, id))
}

// ListByExam returns every result of an exam, newest first.
func (r *ExamResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM exam_results r JOIN persons p ON p.id = r.person_id
		 WHERE r.exam_id = $1
		 ORDER BY r.created_at DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.ExamResult, 0)
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

// Stats aggregates the results of an exam.
func (r *ExamResultRepository) Stats(ctx context.Context, examID uuid.UUID) (*model.ResultStats, error) {
	s := &model.ResultStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_passed),
		        COALESCE(AVG(score), 0)::float8,
		        COALESCE(MAX(score), 0),
		        COALESCE(MIN(score), 0)
		 FROM exam_results WHERE exam_id = $1`, examID,
	).Scan(&s.Total, &s.Passed, &s.AverageScore, &s.HighestScore, &s.LowestScore)
	if err != nil {
		return nil, err
	}
	s.Failed = s.Total - s.Passed
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total) * 100
	}
	return s, nil
}

// ExistsForPerson reports whether the person already has a result for the exam.
func (r *ExamResultRepository) ExistsForPerson(ctx context.Context, examID, personID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_results WHERE exam_id = $1 AND person_id = $2)`,
		examID, personID,
	).Scan(&exists)
	return exists, err
}
