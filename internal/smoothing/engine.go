package smoothing

import "signalstate/internal/emotion"

// DefaultWindowSize is the number of recent results averaged together.
const DefaultWindowSize = 5

// Engine holds one session's smoothing window. FIFO eviction beyond the
// configured size.
type Engine struct {
	window []emotion.Distribution
	size   int
}

// New constructs an engine with the given window size. Sizes below one fall
// back to the default.
func New(size int) *Engine {
	if size < 1 {
		size = DefaultWindowSize
	}
	return &Engine{
		window: make([]emotion.Distribution, 0, size),
		size:   size,
	}
}

// Observe appends the distribution to the window, evicting the oldest entry
// beyond the window size, and returns the smoothed distribution. The first
// observation after a reset is returned as-is.
func (e *Engine) Observe(d emotion.Distribution) emotion.Distribution {
	if len(e.window) == e.size {
		copy(e.window, e.window[1:])
		e.window = e.window[:e.size-1]
	}
	e.window = append(e.window, d)
	return e.mean()
}

// Current returns the smoothed distribution without observing anything new.
// An empty window yields the defined neutral default rather than an error.
func (e *Engine) Current() emotion.Distribution {
	if len(e.window) == 0 {
		return emotion.NeutralDefault()
	}
	return e.mean()
}

// Len reports how many results the window currently holds.
func (e *Engine) Len() int { return len(e.window) }

// Size reports the configured window bound.
func (e *Engine) Size() int { return e.size }

// Reset empties the window. The next Observe starts an empty-window
// computation.
func (e *Engine) Reset() {
	e.window = e.window[:0]
}

func (e *Engine) mean() emotion.Distribution {
	var out emotion.Distribution
	n := float64(len(e.window))
	for _, d := range e.window {
		for i, v := range d {
			out[i] += v
		}
	}
	for i := range out {
		out[i] /= n
	}
	return out
}
