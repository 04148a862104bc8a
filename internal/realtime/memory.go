package realtime

import (
	"context"
	"sync"

	"amani-server/internal/models"

	"go.uber.org/zap"
)

const subscriberBuffer = 64

type memorySubscriber struct {
	ch   chan *models.Message
	stop chan struct{}
}

// MemoryBroker is an in-process fan-out used by tests and single-node
// deployments. Each subscriber drains its own FIFO channel, which preserves
// per-thread insertion order.
type MemoryBroker struct {
	mu          sync.Mutex
	subscribers map[string]map[*memorySubscriber]struct{}
	logger      *zap.Logger
}

// NewMemoryBroker creates a MemoryBroker.
func NewMemoryBroker(logger *zap.Logger) *MemoryBroker {
	return &MemoryBroker{
		subscribers: make(map[string]map[*memorySubscriber]struct{}),
		logger:      logger,
	}
}

// Publish delivers msg to every current subscriber of the thread. A subscriber
// that cannot keep up loses the message rather than blocking the sender.
func (b *MemoryBroker) Publish(ctx context.Context, threadID string, msg *models.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subscribers[threadID] {
		select {
		case sub.ch <- msg:
		default:
			b.logger.Warn("dropping message for slow subscriber",
				zap.String("thread_id", threadID),
				zap.String("message_id", msg.ID),
			)
		}
	}
	return nil
}

// SubscribeThread registers fn for the thread and starts a delivery goroutine.
func (b *MemoryBroker) SubscribeThread(ctx context.Context, threadID string, fn Handler) (*Subscription, error) {
	sub := &memorySubscriber{
		ch:   make(chan *models.Message, subscriberBuffer),
		stop: make(chan struct{}),
	}

	b.mu.Lock()
	if b.subscribers[threadID] == nil {
		b.subscribers[threadID] = make(map[*memorySubscriber]struct{})
	}
	b.subscribers[threadID][sub] = struct{}{}
	b.mu.Unlock()

	s := newSubscription(func() {
		b.mu.Lock()
		delete(b.subscribers[threadID], sub)
		if len(b.subscribers[threadID]) == 0 {
			delete(b.subscribers, threadID)
		}
		b.mu.Unlock()
		close(sub.stop)
	})

	go func() {
		defer close(s.done)
		for {
			select {
			case <-sub.stop:
				return
			case <-ctx.Done():
				s.cancelOnce.Do(s.cancel)
				return
			case msg := <-sub.ch:
				fn(msg)
			}
		}
	}()

	return s, nil
}
