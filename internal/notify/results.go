// Package notify fans out newly stored results over Redis Pub/Sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/istanbulinstitute/educrm-exam/internal/config"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/redis/go-redis/v9"
)

// ResultPublisher publishes and subscribes to per-exam result channels.
type ResultPublisher struct {
	rdb *redis.Client
}

// NewResultPublisher creates a ResultPublisher.
func NewResultPublisher(rdb *redis.Client) *ResultPublisher {
	return &ResultPublisher{rdb: rdb}
}

// PublishResult announces a stored result on the exam's channel.
func (p *ResultPublisher) PublishResult(ctx context.Context, ev model.ResultEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode result event: %w", err)
	}
	channel := config.CacheKey.ExamResultsChannel(ev.ExamID.String())
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish result event: %w", err)
	}
	return nil
}

// SubscribeResults opens a subscription to an exam's result channel.
// The caller must Close the returned PubSub.
func (p *ResultPublisher) SubscribeResults(ctx context.Context, examID uuid.UUID) *redis.PubSub {
	return p.rdb.Subscribe(ctx, config.CacheKey.ExamResultsChannel(examID.String()))
}

// Follow streams the raw payloads published for examID until ctx is done.
// The subscription is confirmed before Follow returns, so no event published
// afterwards is missed. The channel is closed when the subscription ends.
func (p *ResultPublisher) Follow(ctx context.Context, examID uuid.UUID) (<-chan []byte, error) {
	pubsub := p.SubscribeResults(ctx, examID)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe results: %w", err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
