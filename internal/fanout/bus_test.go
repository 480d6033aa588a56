package fanout

import (
	"sync"
	"testing"
	"time"

	"signalstate/internal/emotion"
	"signalstate/internal/logging"
)

func stateSeq(seq uint64) *emotion.SmoothedState {
	return &emotion.SmoothedState{Sequence: seq, Dominant: emotion.Neutral, Status: emotion.StatusHealthy}
}

// waitDelivered polls until the subscriber has completed n deliveries.
func waitDelivered(t *testing.T, bus *Bus, id string, n uint64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if done, ok := bus.Delivered(id); ok && done >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	done, _ := bus.Delivered(id)
	t.Fatalf("subscriber %s delivered %d of %d states", id, done, n)
}

func TestPublishOrderPreservedPerSubscriber(t *testing.T) {
	bus := NewBus(logging.NewNop())
	defer bus.Close()

	var mu sync.Mutex
	var fast, slow []uint64

	if _, err := bus.Subscribe("fast", func(st *emotion.SmoothedState) {
		mu.Lock()
		fast = append(fast, st.Sequence)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("subscribe fast: %v", err)
	}
	if _, err := bus.Subscribe("slow", func(st *emotion.SmoothedState) {
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		slow = append(slow, st.Sequence)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("subscribe slow: %v", err)
	}

	const n = 20
	for i := uint64(1); i <= n; i++ {
		bus.Publish(stateSeq(i))
	}

	waitDelivered(t, bus, "fast", n)
	waitDelivered(t, bus, "slow", n)

	mu.Lock()
	defer mu.Unlock()
	for name, got := range map[string][]uint64{"fast": fast, "slow": slow} {
		if len(got) != n {
			t.Fatalf("%s: expected %d deliveries, got %d", name, n, len(got))
		}
		for i, seq := range got {
			if seq != uint64(i+1) {
				t.Fatalf("%s: delivery %d out of order: got seq %d", name, i, seq)
			}
		}
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewBus(logging.NewNop())
	defer bus.Close()

	blocked := make(chan struct{})
	if _, err := bus.Subscribe("stuck", func(*emotion.SmoothedState) {
		<-blocked
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer close(blocked)

	done := make(chan struct{})
	go func() {
		for i := uint64(1); i <= 100; i++ {
			bus.Publish(stateSeq(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a stuck subscriber")
	}
}

func TestHandlerPanicIsIsolated(t *testing.T) {
	bus := NewBus(logging.NewNop())
	defer bus.Close()

	var mu sync.Mutex
	var healthy []uint64

	if _, err := bus.Subscribe("panicky", func(*emotion.SmoothedState) {
		panic("handler bug")
	}); err != nil {
		t.Fatalf("subscribe panicky: %v", err)
	}
	if _, err := bus.Subscribe("healthy", func(st *emotion.SmoothedState) {
		mu.Lock()
		healthy = append(healthy, st.Sequence)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("subscribe healthy: %v", err)
	}

	bus.Publish(stateSeq(1))
	bus.Publish(stateSeq(2))

	waitDelivered(t, bus, "healthy", 2)
	waitDelivered(t, bus, "panicky", 2)

	mu.Lock()
	defer mu.Unlock()
	if len(healthy) != 2 {
		t.Fatalf("healthy subscriber missed deliveries: %v", healthy)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	bus := NewBus(logging.NewNop())
	defer bus.Close()

	sub, err := bus.Subscribe("viewer", func(*emotion.SmoothedState) {})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sub.Cancel()
	sub.Cancel()
	bus.Unsubscribe("viewer")
	bus.Unsubscribe("never-registered")

	if ids := bus.SubscriberIDs(); len(ids) != 0 {
		t.Fatalf("expected no subscribers, got %v", ids)
	}
}

func TestDuplicateSubscriberRejected(t *testing.T) {
	bus := NewBus(logging.NewNop())
	defer bus.Close()

	if _, err := bus.Subscribe("viewer", func(*emotion.SmoothedState) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := bus.Subscribe("viewer", func(*emotion.SmoothedState) {}); err != ErrSubscriberExists {
		t.Fatalf("expected ErrSubscriberExists, got %v", err)
	}
}

func TestSubscribeAfterCloseFails(t *testing.T) {
	bus := NewBus(logging.NewNop())
	bus.Close()

	if _, err := bus.Subscribe("late", func(*emotion.SmoothedState) {}); err != ErrBusClosed {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
}

func TestNilHandlerRejected(t *testing.T) {
	bus := NewBus(logging.NewNop())
	defer bus.Close()

	if _, err := bus.Subscribe("bad", nil); err != ErrNilHandler {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}

func TestCloseDeliversAcceptedStates(t *testing.T) {
	bus := NewBus(logging.NewNop())

	var mu sync.Mutex
	var got []uint64
	if _, err := bus.Subscribe("viewer", func(st *emotion.SmoothedState) {
		time.Sleep(time.Millisecond)
		mu.Lock()
		got = append(got, st.Sequence)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	for i := uint64(1); i <= 10; i++ {
		bus.Publish(stateSeq(i))
	}
	bus.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("expected all accepted states delivered before close returned, got %d", len(got))
	}
}
