package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CourseRepository reads the course catalog.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// GetByID retrieves a course by its UUID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	c := &model.Course{}
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM courses WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}
