package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `e.id, e.exam_code, e.course_id, e.title, e.description, e.exam_date,
	e.duration, e.total_score, e.passing_score, e.is_active, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id),
	(SELECT COUNT(*) FROM exam_results r WHERE r.exam_id = e.id)`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.ExamCode, &e.CourseID, &e.Title, &e.Description, &e.ExamDate,
		&e.Duration, &e.TotalScore, &e.PassingScore, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		&e.QuestionCount, &e.ResultCount)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

// Create inserts a new exam. A taken exam code yields ErrDuplicateExamCode;
// the unique index is what makes concurrent creation safe.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exams (exam_code, course_id, title, description, exam_date,
		                    duration, total_score, passing_score, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		e.ExamCode, e.CourseID, e.Title, e.Description, e.ExamDate,
		e.Duration, e.TotalScore, e.PassingScore, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return translate(err)
}

// GetByID retrieves an exam by its UUID, without questions.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.id = $1`, id))
}

// GetActiveByCode retrieves an active exam by its code, case-insensitively.
func (r *ExamRepository) GetActiveByCode(ctx context.Context, code string) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams e
		 WHERE e.exam_code = UPPER($1) AND e.is_active`, strings.TrimSpace(code)))
}

// List returns a page of exams matching the filter, newest exam date first.
func (r *ExamRepository) List(ctx context.Context, f model.ExamFilter) ([]model.Exam, int, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(e.title ILIKE $%d OR e.exam_code ILIKE $%d OR e.description ILIKE $%d)", n, n, n))
	}
	if f.CourseID != nil {
		args = append(args, *f.CourseID)
		where = append(where, fmt.Sprintf("e.course_id = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams e`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)
	query := `SELECT ` + examColumns + ` FROM exams e` + clause +
		fmt.Sprintf(` ORDER BY e.exam_date DESC NULLS LAST, e.created_at DESC LIMIT $%d OFFSET $%d`,
			len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	exams := make([]model.Exam, 0)
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, 0, err
		}
		exams = append(exams, *e)
	}
	return exams, total, rows.Err()
}

// Update writes the editable metadata of an exam. total_score is left alone.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET course_id = $1, title = $2, description = $3, exam_date = $4,
		     duration = $5, passing_score = $6, is_active = $7, updated_at = NOW()
		 WHERE id = $8
		 RETURNING total_score, updated_at`,
		e.CourseID, e.Title, e.Description, e.ExamDate,
		e.Duration, e.PassingScore, e.IsActive, e.ID,
	).Scan(&e.TotalScore, &e.UpdatedAt)
	return translate(err)
}

// Delete removes an exam; questions and results cascade.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecalculateTotal resets total_score to the sum of question points.
func (r *ExamRepository) RecalculateTotal(ctx context.Context, id uuid.UUID) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET total_score = COALESCE((SELECT SUM(points) FROM questions WHERE exam_id = $1), 0),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING total_score`, id,
	).Scan(&total)
	return total, translate(err)
}
