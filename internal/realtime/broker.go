package realtime

import (
	"context"
	"sync"

	"amani-server/internal/models"
)

// Handler is invoked once per newly inserted message, in insertion order, for
// as long as the subscription is held.
type Handler func(msg *models.Message)

// Broker fans newly stored messages out to thread subscribers. Channels are
// keyed by thread id; there is no cross-thread ordering guarantee.
type Broker interface {
	Publish(ctx context.Context, threadID string, msg *models.Message) error
	SubscribeThread(ctx context.Context, threadID string, fn Handler) (*Subscription, error)
}

// Subscription is a live feed handle independent of any UI lifecycle. Cancel
// stops delivery and blocks until the delivery goroutine has exited, so no
// callback runs after Cancel returns.
type Subscription struct {
	cancelOnce sync.Once
	cancel     func()
	done       chan struct{}
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel stops the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(s.cancel)
	<-s.done
}

// Done is closed once delivery has fully stopped.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
