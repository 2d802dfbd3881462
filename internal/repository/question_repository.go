package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question data access. Every mutation runs in a
// transaction that first locks the parent exam row, so order allocation and
// the exam total_score stay consistent under concurrent edits.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, exam_id, question_text, question_type, options, correct_answer,
	points, order_num, created_at, updated_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.QuestionType, &q.Options, &q.CorrectAnswer,
		&q.Points, &q.Order, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return q, nil
}

// ListByExam retrieves all questions for a given exam, ordered by order_num.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE exam_id = $1 ORDER BY order_num`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]model.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// Create inserts a question and adds its points to the exam total.
// A zero Order appends after the current last question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return translate(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockExam(ctx, tx, q.ExamID); err != nil {
			return err
		}
		if q.Order == 0 {
			next, err := nextOrder(ctx, tx, q.ExamID)
			if err != nil {
				return err
			}
			q.Order = next
		}
		if err := insertQuestion(ctx, tx, q); err != nil {
			return err
		}
		return addToTotal(ctx, tx, q.ExamID, q.Points)
	}))
}

// CreateBatch inserts all questions or none, adding their combined points to
// the exam total. Questions with a zero Order are appended in slice order.
// It returns the points added.
func (r *QuestionRepository) CreateBatch(ctx context.Context, examID uuid.UUID, qs []model.Question) (int, error) {
	var added int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockExam(ctx, tx, examID); err != nil {
			return err
		}
		next, err := nextOrder(ctx, tx, examID)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i := range qs {
			q := &qs[i]
			q.ExamID = examID
			if q.Order == 0 {
				q.Order = next
				next++
			}
			added += q.Points
			batch.Queue(insertQuestionSQL,
				q.ExamID, q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer, q.Points, q.Order,
			).QueryRow(func(row pgx.Row) error {
				return row.Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
			})
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		return addToTotal(ctx, tx, examID, added)
	})
	if err != nil {
		return 0, translate(err)
	}
	return added, nil
}

// Update writes a question and applies the points difference to the exam
// total. It returns the applied difference.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) (int, error) {
	var delta int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockExam(ctx, tx, q.ExamID); err != nil {
			return err
		}
		var oldPoints int
		if err := tx.QueryRow(ctx,
			`SELECT points FROM questions WHERE id = $1 AND exam_id = $2 FOR UPDATE`,
			q.ID, q.ExamID,
		).Scan(&oldPoints); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`UPDATE questions
			 SET question_text = $1, question_type = $2, options = $3, correct_answer = $4,
			     points = $5, order_num = $6, updated_at = NOW()
			 WHERE id = $7
			 RETURNING updated_at`,
			q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer, q.Points, q.Order, q.ID,
		).Scan(&q.UpdatedAt); err != nil {
			return err
		}

		delta = q.Points - oldPoints
		return addToTotal(ctx, tx, q.ExamID, delta)
	})
	if err != nil {
		return 0, translate(err)
	}
	return delta, nil
}

// Delete removes a question and subtracts its points from the exam total.
func (r *QuestionRepository) Delete(ctx context.Context, examID, id uuid.UUID) error {
	return translate(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockExam(ctx, tx, examID); err != nil {
			return err
		}
		var points int
		if err := tx.QueryRow(ctx,
			`DELETE FROM questions WHERE id = $1 AND exam_id = $2 RETURNING points`, id, examID,
		).Scan(&points); err != nil {
			return err
		}
		return addToTotal(ctx, tx, examID, -points)
	}))
}

// DeleteAllByExam removes every question of an exam and resets its total to
// zero. It returns the number of deleted questions.
func (r *QuestionRepository) DeleteAllByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	var deleted int
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockExam(ctx, tx, examID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM questions WHERE exam_id = $1`, examID)
		if err != nil {
			return err
		}
		deleted = int(tag.RowsAffected())
		_, err = tx.Exec(ctx,
			`UPDATE exams SET total_score = 0, updated_at = NOW() WHERE id = $1`, examID)
		return err
	})
	if err != nil {
		return 0, translate(err)
	}
	return deleted, nil
}

// ─── transaction helpers ────────────────────────────────────────────

const insertQuestionSQL = `INSERT INTO questions
	(exam_id, question_text, question_type, options, correct_answer, points, order_num)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at, updated_at`

func insertQuestion(ctx context.Context, db dbtx, q *model.Question) error {
	return db.QueryRow(ctx, insertQuestionSQL,
		q.ExamID, q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer, q.Points, q.Order,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// lockExam takes the exam row lock for the rest of the transaction.
func lockExam(ctx context.Context, db dbtx, examID uuid.UUID) error {
	var id uuid.UUID
	return db.QueryRow(ctx, `SELECT id FROM exams WHERE id = $1 FOR UPDATE`, examID).Scan(&id)
}

func nextOrder(ctx context.Context, db dbtx, examID uuid.UUID) (int, error) {
	var next int
	err := db.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_num), 0) + 1 FROM questions WHERE exam_id = $1`, examID,
	).Scan(&next)
	return next, err
}

func addToTotal(ctx context.Context, db dbtx, examID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	_, err := db.Exec(ctx,
		`UPDATE exams SET total_score = total_score + $1, updated_at = NOW() WHERE id = $2`,
		delta, examID)
	return err
}
