package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegistrationRepository reads course registrations for eligibility checks.
type RegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

// FindForCourse returns the person's most favourable registration for a
// course: active before inactive, paid before unpaid, newest first.
func (r *RegistrationRepository) FindForCourse(ctx context.Context, personID, courseID uuid.UUID) (*model.Registration, error) {
	reg := &model.Registration{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, person_id, course_id, status, payment_status, created_at
		 FROM registrations
		 WHERE person_id = $1 AND course_id = $2
		 ORDER BY (status IN ('CONFIRMED', 'COMPLETED')) DESC,
		          (payment_status = 'PAID') DESC,
		          created_at DESC
		 LIMIT 1`, personID, courseID,
	).Scan(&reg.ID, &reg.PersonID, &reg.CourseID, &reg.Status, &reg.PaymentStatus, &reg.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return reg, nil
}
