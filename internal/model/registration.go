package model

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus tracks a person's enrolment in a course.
type RegistrationStatus string

const (
	RegistrationPotential RegistrationStatus = "POTENTIAL"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
	RegistrationCompleted RegistrationStatus = "COMPLETED"
)

// PaymentStatus tracks how much of a registration has been paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Registration links a person to a course.
type Registration struct {
	ID            uuid.UUID          `json:"id"`
	PersonID      uuid.UUID          `json:"personId"`
	CourseID      uuid.UUID          `json:"courseId"`
	Status        RegistrationStatus `json:"status"`
	PaymentStatus PaymentStatus      `json:"paymentStatus"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// Active reports whether the registration counts as enrolled.
func (r *Registration) Active() bool {
	return r.Status == RegistrationConfirmed || r.Status == RegistrationCompleted
}
