package events

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPublishAndProcess(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	publisher := NewPublisher(client)
	err := publisher.Publish(ctx, TransactionEventsStream, TransactionUsed, BalanceChangedEvent{
		TransactionID: "tx-1",
		AccountNumber: "1000000012",
		Amount:        200,
		NewBalance:    9800,
	})
	require.NoError(t, err)

	msgs, err := client.XRange(ctx, TransactionEventsStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, TransactionUsed, msgs[0].Values["type"])

	var got BalanceChangedEvent
	var gotType, gotID string
	sub := NewSubscriber(client, zap.NewNop(), SubscriberConfig{
		Group:    "test-group",
		Consumer: "c1",
		Stream:   TransactionEventsStream,
		Handler: func(ctx context.Context, event Event) error {
			gotType = event.Type
			gotID = event.ID
			return DecodeData(event, &got)
		},
	})
	require.NoError(t, sub.processMessage(ctx, msgs[0]))

	assert.Equal(t, TransactionUsed, gotType)
	assert.Len(t, gotID, 36)
	assert.Equal(t, "1000000012", got.AccountNumber)
	assert.Equal(t, int64(9800), got.NewBalance)
}

func TestProcessMessageRejectsMalformed(t *testing.T) {
	sub := NewSubscriber(newTestClient(t), zap.NewNop(), SubscriberConfig{
		Stream:  TransactionEventsStream,
		Handler: func(ctx context.Context, event Event) error { return errors.New("must not be called") },
	})

	err := sub.processMessage(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]any{"other": "x"}})
	assert.Error(t, err)

	err = sub.processMessage(context.Background(), redis.XMessage{ID: "1-1", Values: map[string]any{"event": "{not json"}})
	assert.Error(t, err)
}
