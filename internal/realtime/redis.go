package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"amani-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker fans messages out across server instances via redis pub/sub.
// One channel per thread, payloads are the stored message as JSON.
type RedisBroker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBroker creates a RedisBroker on the given client.
func NewRedisBroker(client *redis.Client, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{
		client: client,
		logger: logger,
	}
}

func threadChannel(threadID string) string {
	return fmt.Sprintf("thread:%s", threadID)
}

// Publish sends the stored message to the thread's channel.
func (b *RedisBroker) Publish(ctx context.Context, threadID string, msg *models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	if err := b.client.Publish(ctx, threadChannel(threadID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// SubscribeThread opens a pub/sub subscription on the thread's channel. Redis
// delivers per-channel messages in publish order, which matches the message
// log's insertion order.
func (b *RedisBroker) SubscribeThread(ctx context.Context, threadID string, fn Handler) (*Subscription, error) {
	pubsub := b.client.Subscribe(ctx, threadChannel(threadID))

	// Force the subscription to be established before returning so callers
	// never miss messages published after SubscribeThread succeeds.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to thread channel: %w", err)
	}

	s := newSubscription(func() {
		// Closing the pubsub closes its Channel(), which ends delivery.
		if err := pubsub.Close(); err != nil {
			b.logger.Warn("failed to close thread subscription", zap.Error(err))
		}
	})

	go func() {
		defer close(s.done)
		for raw := range pubsub.Channel() {
			var msg models.Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				b.logger.Warn("failed to decode realtime message",
					zap.String("thread_id", threadID),
					zap.Error(err),
				)
				continue
			}
			fn(&msg)
		}
	}()

	return s, nil
}
