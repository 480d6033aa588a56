package aggregate

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"signalstate/internal/emotion"
	"signalstate/internal/logging"
)

var (
	// ErrViewExists is returned when a view name is already registered.
	ErrViewExists = errors.New("aggregate: view already registered")
	// ErrNilRule is returned when Register receives no rule.
	ErrNilRule = errors.New("aggregate: nil rule")
)

// Rule derives a view's aggregate update from one delivered state. Rules are
// pure with respect to everything except the state they are handed.
type Rule func(s *State, st *emotion.SmoothedState)

// State is one view's mutable aggregate. Only the owning view's handler
// mutates it; the aggregator serializes access for readers.
type State struct {
	counters map[string]uint64
	prev     emotion.Label
	hasPrev  bool
}

// Inc bumps a named counter by one.
func (s *State) Inc(key string) {
	s.counters[key]++
}

// Add bumps a named counter by n.
func (s *State) Add(key string, n uint64) {
	s.counters[key] += n
}

// Previous returns the dominant label of the last face-bearing update, if any.
// It reflects the state before the current update is applied.
func (s *State) Previous() (emotion.Label, bool) {
	return s.prev, s.hasPrev
}

// Snapshot is a read-only copy of one view's aggregates.
type Snapshot struct {
	View     string            `json:"view"`
	Updates  uint64            `json:"updates"`
	Counters map[string]uint64 `json:"counters"`
}

type view struct {
	name string
	rule Rule

	mu      sync.Mutex
	state   State
	updates uint64
}

func (v *view) apply(st *emotion.SmoothedState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rule(&v.state, st)
	v.updates++
	if st.FaceFound {
		v.state.prev = st.Dominant
		v.state.hasPrev = true
	}
}

func (v *view) snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	counters := make(map[string]uint64, len(v.state.counters))
	for k, n := range v.state.counters {
		counters[k] = n
	}
	return Snapshot{View: v.name, Updates: v.updates, Counters: counters}
}

func (v *view) reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state = State{counters: make(map[string]uint64)}
	v.updates = 0
}

// Aggregator holds all registered views for the current session.
type Aggregator struct {
	mu     sync.RWMutex
	views  map[string]*view
	logger *slog.Logger
}

// New constructs an aggregator with no views.
func New(logger *slog.Logger) *Aggregator {
	return &Aggregator{
		views:  make(map[string]*view),
		logger: logging.NewComponentLogger(logger, "aggregate"),
	}
}

// Register adds a view and returns the delivery handler to subscribe on the
// fan-out bus. The handler applies updates in the order it is called.
func (a *Aggregator) Register(name string, rule Rule) (func(*emotion.SmoothedState), error) {
	if rule == nil {
		return nil, ErrNilRule
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.views[name]; exists {
		return nil, ErrViewExists
	}

	v := &view{
		name:  name,
		rule:  rule,
		state: State{counters: make(map[string]uint64)},
	}
	a.views[name] = v
	a.logger.Debug("view registered", logging.String("view", name))

	return v.apply, nil
}

// View returns a snapshot of one view's aggregates.
func (a *Aggregator) View(name string) (Snapshot, bool) {
	a.mu.RLock()
	v, ok := a.views[name]
	a.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return v.snapshot(), true
}

// Views returns snapshots of every view, sorted by name.
func (a *Aggregator) Views() []Snapshot {
	a.mu.RLock()
	views := make([]*view, 0, len(a.views))
	for _, v := range a.views {
		views = append(views, v)
	}
	a.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(views))
	for _, v := range views {
		snaps = append(snaps, v.snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].View < snaps[j].View })
	return snaps
}

// Reset zeroes every view's counters, update count and previous-label memory.
func (a *Aggregator) Reset() {
	a.mu.RLock()
	views := make([]*view, 0, len(a.views))
	for _, v := range a.views {
		views = append(views, v)
	}
	a.mu.RUnlock()

	for _, v := range views {
		v.reset()
	}
	a.logger.Info("aggregates reset", logging.Int("views", len(views)))
}
