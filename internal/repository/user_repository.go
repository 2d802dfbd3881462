package repository

import (
	"context"
	"strings"

	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles staff account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, created_at
		 FROM users WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email),
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash)
		 VALUES (LOWER($1), $2, $3)
		 RETURNING id, email, created_at`,
		strings.TrimSpace(u.Email), u.Name, u.PasswordHash,
	).Scan(&u.ID, &u.Email, &u.CreatedAt)
	return translate(err)
}
