package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by repositories.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateExamCode = errors.New("exam code already in use")
	ErrDuplicateResult   = errors.New("result already recorded for this person and exam")
	ErrDuplicateOrder    = errors.New("question order already used in exam")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidReference  = errors.New("referenced record does not exist")
)

// Constraint names from migrations/000001_init.up.sql.
const (
	constraintExamCode    = "exams_exam_code_key"
	constraintResult      = "exam_results_exam_person_key"
	constraintOrder       = "questions_exam_order_key"
	constraintUserEmail   = "users_email_key"
	constraintPersonEmail = "persons_email_lower_key"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// translate maps driver errors to repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintExamCode:
			return ErrDuplicateExamCode
		case constraintResult:
			return ErrDuplicateResult
		case constraintOrder:
			return ErrDuplicateOrder
		case constraintUserEmail, constraintPersonEmail:
			return ErrDuplicateEmail
		}
	case pgForeignKeyViolation:
		return ErrInvalidReference
	}
	return err
}
