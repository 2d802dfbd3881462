package session

import (
	"errors"
	"fmt"

	"github.com/istanbulinstitute/educrm-exam/internal/response"
)

// Conditions a candidate can act on.
var (
	ErrExamNotFound      = errors.New("exam not found or inactive")
	ErrCandidateUnknown  = errors.New("candidate not known")
	ErrNotRegistered     = errors.New("not registered for the course")
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrAlreadySubmitted  = errors.New("exam already completed")
	ErrTimeExpired       = errors.New("submission deadline passed")
	ErrRateLimited       = errors.New("too many requests")
	ErrIdentityInvalid   = errors.New("first name, last name and a valid email are required")
)

// State machine misuse.
var (
	ErrWrongState     = errors.New("operation not allowed in current state")
	ErrSubmitInFlight = errors.New("submission already in progress")
	ErrTimeUp         = errors.New("time is up")
	ErrNoSuchQuestion = errors.New("question index out of range")
)

var codeErrors = map[response.ErrCode]error{
	response.ErrPublicExamNotFound: ErrExamNotFound,
	response.ErrExamNotFound:       ErrExamNotFound,
	response.ErrCandidateUnknown:   ErrCandidateUnknown,
	response.ErrNotRegistered:      ErrNotRegistered,
	response.ErrPaymentIncomplete:  ErrPaymentIncomplete,
	response.ErrAlreadySubmitted:   ErrAlreadySubmitted,
	response.ErrExamTimeExpired:    ErrTimeExpired,
	response.ErrRateLimitExceeded:  ErrRateLimited,
	response.ErrValidation:         ErrIdentityInvalid,
	response.ErrStudentInfoMissing: ErrIdentityInvalid,
}

// APIError is an error envelope returned by the exam API. It unwraps to the
// matching sentinel above when the code is known.
type APIError struct {
	Status  int
	Code    response.ErrCode
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("exam api: status %d (%s)", e.Status, e.Code)
}

func (e *APIError) Unwrap() error {
	return codeErrors[e.Code]
}
