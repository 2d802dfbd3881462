package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/redis/go-redis/v9"
)

// memRedis implements the few commands the cache uses. Calling any other
// method panics through the nil embedded interface.
type memRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
}

func newMemRedis() *memRedis {
	return &memRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestPublicExamCache(t *testing.T) {
	ctx := context.Background()
	rdb := newMemRedis()
	c := NewPublicExamCache(rdb, 5*time.Minute)

	if _, err := c.Get(ctx, "ABC234"); !errors.Is(err, ErrMiss) {
		t.Fatalf("Get on empty cache: err = %v, want ErrMiss", err)
	}

	exam := &model.PublicExam{
		ID: uuid.New(), ExamCode: "ABC234", Title: "Go Temelleri", Duration: 30, TotalScore: 10,
		Questions: []model.PublicQuestion{{ID: uuid.New(), QuestionText: "q", QuestionType: model.QuestionTypeEssay, Points: 10, Order: 1}},
	}
	if err := c.Set(ctx, exam); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if rdb.ttl["exam:code:ABC234:public"] != 5*time.Minute {
		t.Errorf("ttl = %v", rdb.ttl)
	}

	got, err := c.Get(ctx, "abc234")
	if err != nil {
		t.Fatalf("Get lowercase code: %v", err)
	}
	if got.ID != exam.ID || len(got.Questions) != 1 {
		t.Errorf("got = %+v", got)
	}
	for _, raw := range rdb.data {
		if strings.Contains(raw, "correctAnswer") {
			t.Errorf("cached payload carries an answer key: %s", raw)
		}
	}

	if err := c.Invalidate(ctx, "ABC234"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := c.Get(ctx, "ABC234"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get after Invalidate: err = %v, want ErrMiss", err)
	}
}

func TestPublicExamCacheCorruptEntry(t *testing.T) {
	rdb := newMemRedis()
	rdb.data["exam:code:BAD:public"] = "{not json"
	c := NewPublicExamCache(rdb, time.Minute)

	_, err := c.Get(context.Background(), "BAD")
	if err == nil || errors.Is(err, ErrMiss) {
		t.Errorf("err = %v, want decode error", err)
	}
}
