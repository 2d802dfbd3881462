// Package cache keeps the candidate-facing exam projection in Redis.
// Only PublicExam values are stored, so cached data never carries answer keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/istanbulinstitute/educrm-exam/internal/config"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when no projection is cached for a code.
var ErrMiss = errors.New("cache miss")

// PublicExamCache stores PublicExam projections keyed by exam code.
type PublicExamCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewPublicExamCache creates a cache with the given entry lifetime.
func NewPublicExamCache(rdb redis.Cmdable, ttl time.Duration) *PublicExamCache {
	return &PublicExamCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached projection or ErrMiss.
func (c *PublicExamCache) Get(ctx context.Context, code string) (*model.PublicExam, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.PublicExamKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get public exam: %w", err)
	}

	var exam model.PublicExam
	if err := json.Unmarshal(raw, &exam); err != nil {
		return nil, fmt.Errorf("decode public exam: %w", err)
	}
	return &exam, nil
}

// Set stores a projection under its exam code.
func (c *PublicExamCache) Set(ctx context.Context, exam *model.PublicExam) error {
	raw, err := json.Marshal(exam)
	if err != nil {
		return fmt.Errorf("encode public exam: %w", err)
	}
	if err := c.rdb.Set(ctx, config.CacheKey.PublicExamKey(exam.ExamCode), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set public exam: %w", err)
	}
	return nil
}

// Invalidate drops the projection for a code.
func (c *PublicExamCache) Invalidate(ctx context.Context, code string) error {
	if err := c.rdb.Del(ctx, config.CacheKey.PublicExamKey(code)).Err(); err != nil {
		return fmt.Errorf("invalidate public exam: %w", err)
	}
	return nil
}
