package fanout

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"signalstate/internal/emotion"
	"signalstate/internal/logging"
)

// subscriber is one consumer's delivery lane: an unbounded FIFO drained by a
// dedicated goroutine. The queue grows only while the handler lags; sustained
// growth is the consumer's bug, not grounds for the bus to drop or reorder.
type subscriber struct {
	id      string
	handler Handler
	logger  *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*emotion.SmoothedState
	closed bool

	done      uint64
	stoppedWG sync.WaitGroup
}

func newSubscriber(id string, handler Handler, logger *slog.Logger) *subscriber {
	s := &subscriber{
		id:      id,
		handler: handler,
		logger:  logger,
	}
	s.cond = sync.NewCond(&s.mu)
	s.stoppedWG.Add(1)
	return s
}

func (s *subscriber) enqueue(state *emotion.SmoothedState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.queue = append(s.queue, state)
	s.cond.Signal()
}

// run drains the queue until closed, then finishes whatever was already
// accepted before returning.
func (s *subscriber) run() {
	defer s.stoppedWG.Done()
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 && s.closed {
			s.mu.Unlock()
			return
		}
		state := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.deliver(state)
	}
}

func (s *subscriber) deliver(state *emotion.SmoothedState) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("consumer handler fault",
				logging.String(logging.FieldConsumer, s.id),
				logging.Any("panic", r))
		}
		atomic.AddUint64(&s.done, 1)
	}()
	s.handler(state)
}

func (s *subscriber) delivered() uint64 {
	return atomic.LoadUint64(&s.done)
}

// close stops the goroutine after the queue drains and waits for it to exit.
func (s *subscriber) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.stoppedWG.Wait()
		return
	}
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
	s.stoppedWG.Wait()
}
