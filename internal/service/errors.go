package service

import (
	"errors"
	"fmt"

	"github.com/istanbulinstitute/educrm-exam/internal/importer"
)

// Domain errors. Handlers map these to response codes.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrExamNotFound        = errors.New("exam not found")
	ErrPublicExamNotFound  = errors.New("exam not found or inactive")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrResultNotFound      = errors.New("result not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrPassingScoreTooHigh = errors.New("passing score exceeds total score")
	ErrExamCodeExhausted   = errors.New("could not allocate a unique exam code")
	ErrDuplicateOrder      = errors.New("question order already used in exam")
	ErrEmptyImport         = errors.New("import contains no questions")

	ErrCandidateUnknown  = errors.New("candidate not found")
	ErrNotRegistered     = errors.New("candidate not registered for course")
	ErrPaymentIncomplete = errors.New("candidate payment not completed")
	ErrAlreadySubmitted  = errors.New("exam already submitted by candidate")
	ErrExamTimeExpired   = errors.New("submission deadline passed")

	ErrSystemOwnerMissing = errors.New("system owner account missing")
)

// QuestionValidationError lists the authoring rules a single question breaks.
type QuestionValidationError struct {
	Violations []importer.Violation
}

func (e *QuestionValidationError) Error() string {
	return fmt.Sprintf("question invalid: %d violation(s)", len(e.Violations))
}

// ImportError lists every row error of a rejected import.
type ImportError struct {
	Rows []importer.RowError
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import rejected: %d row error(s)", len(e.Rows))
}
