package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
)

// Eligibility decides whether a known candidate may take an exam.
type Eligibility struct {
	persons       PersonStore
	registrations RegistrationStore
	results       ResultStore
}

// NewEligibility creates an Eligibility checker.
func NewEligibility(persons PersonStore, registrations RegistrationStore, results ResultStore) *Eligibility {
	return &Eligibility{persons: persons, registrations: registrations, results: results}
}

// Check runs the pre-flight checks in order: candidate known, registration
// active, payment complete, no earlier result.
func (e *Eligibility) Check(ctx context.Context, examID, courseID uuid.UUID, email string) error {
	person, err := e.persons.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCandidateUnknown
	}
	if err != nil {
		return fmt.Errorf("get person: %w", err)
	}

	reg, err := e.registrations.FindForCourse(ctx, person.ID, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotRegistered
	}
	if err != nil {
		return fmt.Errorf("get registration: %w", err)
	}
	if !reg.Active() {
		return ErrNotRegistered
	}
	if reg.PaymentStatus != model.PaymentPaid {
		return ErrPaymentIncomplete
	}

	done, err := e.results.ExistsForPerson(ctx, examID, person.ID)
	if err != nil {
		return fmt.Errorf("check result: %w", err)
	}
	if done {
		return ErrAlreadySubmitted
	}
	return nil
}
