package model

import (
	"time"

	"github.com/google/uuid"
)

// Person is the CRM contact record; candidates are persons identified by email.
type Person struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	CreatedByID uuid.UUID `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary returns the fields shown next to results.
func (p *Person) Summary() PersonSummary {
	return PersonSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
}
