package fanout

import (
	"errors"
	"log/slog"
	"sync"

	"signalstate/internal/emotion"
	"signalstate/internal/logging"
)

var (
	// ErrBusClosed is returned by Subscribe after Close.
	ErrBusClosed = errors.New("fanout: bus closed")
	// ErrSubscriberExists is returned when a consumer id is already taken.
	ErrSubscriberExists = errors.New("fanout: subscriber already registered")
	// ErrNilHandler is returned when Subscribe receives no handler.
	ErrNilHandler = errors.New("fanout: nil handler")
)

// Handler consumes one delivered state. Handlers run on the subscriber's own
// goroutine and must not mutate the state.
type Handler func(*emotion.SmoothedState)

// Bus fans published states out to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	logger      *slog.Logger
	closed      bool
}

// NewBus constructs an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]*subscriber),
		logger:      logging.NewComponentLogger(logger, "fanout"),
	}
}

// Subscribe registers a handler under the consumer id and starts its delivery
// goroutine. The returned subscription cancels idempotently.
func (b *Bus) Subscribe(id string, handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	if _, exists := b.subscribers[id]; exists {
		return nil, ErrSubscriberExists
	}

	sub := newSubscriber(id, handler, b.logger)
	b.subscribers[id] = sub
	go sub.run()

	return &Subscription{bus: b, id: id}, nil
}

// Publish enqueues the state for every subscriber. Never blocks on consumer
// speed; returns once the state is accepted into each subscriber's queue.
func (b *Bus) Publish(state *emotion.SmoothedState) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, sub := range b.subscribers {
		sub.enqueue(state)
	}
}

// Unsubscribe removes the consumer. Safe to call repeatedly or for ids that
// were never registered.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	b.mu.Unlock()

	if ok {
		sub.close()
	}
}

// SubscriberIDs lists registered consumer ids. Order is unspecified.
func (b *Bus) SubscriberIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	return ids
}

// Delivered reports how many states the subscriber's handler has completed.
func (b *Bus) Delivered(id string) (uint64, bool) {
	b.mu.RLock()
	sub, ok := b.subscribers[id]
	b.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return sub.delivered(), true
}

// Close drains registration and stops every subscriber goroutine. States
// already enqueued are still delivered.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*subscriber, 0, len(b.subscribers))
	for _, sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.subscribers = make(map[string]*subscriber)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus  *Bus
	id   string
	once sync.Once
}

// ID returns the consumer id the subscription was registered under.
func (s *Subscription) ID() string { return s.id }

// Cancel unsubscribes the consumer. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.Unsubscribe(s.id)
	})
}
