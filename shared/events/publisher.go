package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// defaultMaxLen caps each stream (approximately) so an idle consumer group
// cannot grow it without bound.
const defaultMaxLen = 100000

// Publisher appends events to Redis Streams. The event type is also written
// as a separate field so XRANGE output stays readable without decoding.
type Publisher struct {
	client *redis.Client
	maxLen int64
	now    func() time.Time
	newID  func() string
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{
		client: client,
		maxLen: defaultMaxLen,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	event := Event{
		ID:        p.newID(),
		Type:      eventType,
		Timestamp: p.now(),
		Data:      data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"type":  eventType,
			"event": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", eventType, stream, err)
	}
	return nil
}
