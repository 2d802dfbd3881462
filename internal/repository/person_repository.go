package repository

import (
	"context"
	"strings"

	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PersonRepository handles CRM person lookups needed by the exam flow.
type PersonRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository creates a new PersonRepository.
func NewPersonRepository(pool *pgxpool.Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

// GetByEmail retrieves a person by email, case-insensitively.
func (r *PersonRepository) GetByEmail(ctx context.Context, email string) (*model.Person, error) {
	p := &model.Person{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, created_by_id, created_at
		 FROM persons WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email),
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.CreatedByID, &p.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// GetOrCreate returns the person whose email matches p.Email case-insensitively,
// inserting p when none exists. Existing records keep their names and stored
// email casing. Safe under concurrent calls for the same email; created reports
// whether this call inserted the row.
func (r *PersonRepository) GetOrCreate(ctx context.Context, p *model.Person) (created bool, err error) {
	err = r.pool.QueryRow(ctx,
		`INSERT INTO persons (first_name, last_name, email, created_by_id)
		 VALUES ($1, $2, LOWER($3), $4)
		 ON CONFLICT ((LOWER(email))) DO UPDATE SET email = persons.email
		 RETURNING id, first_name, last_name, email, created_by_id, created_at, (xmax = 0)`,
		p.FirstName, p.LastName, strings.TrimSpace(p.Email), p.CreatedByID,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.CreatedByID, &p.CreatedAt, &created)
	return created, translate(err)
}
