package pipeline

import (
	"sync"
	"time"

	"signalstate/internal/emotion"
)

// metricsWindow bounds how many recent frames feed the throughput figures.
const metricsWindow = 30

type metricsSample struct {
	interval  time.Duration
	latency   time.Duration
	inference time.Duration
}

// tracker keeps a bounded window of recent frame timings. Throughput is the
// inverse of the mean inter-frame interval over the window.
type tracker struct {
	mu      sync.Mutex
	samples []metricsSample
	last    time.Time
}

func newTracker() *tracker {
	return &tracker{samples: make([]metricsSample, 0, metricsWindow)}
}

// observe records one completed frame and returns the updated metrics.
func (t *tracker) observe(latency, inference time.Duration, now time.Time) emotion.PipelineMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	sample := metricsSample{latency: latency, inference: inference}
	if !t.last.IsZero() {
		sample.interval = now.Sub(t.last)
	}
	t.last = now

	if len(t.samples) == metricsWindow {
		copy(t.samples, t.samples[1:])
		t.samples = t.samples[:metricsWindow-1]
	}
	t.samples = append(t.samples, sample)
	return t.computeLocked()
}

// snapshot returns the current metrics without recording anything.
func (t *tracker) snapshot() emotion.PipelineMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.computeLocked()
}

func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = t.samples[:0]
	t.last = time.Time{}
}

func (t *tracker) computeLocked() emotion.PipelineMetrics {
	var m emotion.PipelineMetrics
	if len(t.samples) == 0 {
		return m
	}

	var intervals time.Duration
	var withInterval int
	var latency, inference time.Duration
	for _, s := range t.samples {
		if s.interval > 0 {
			intervals += s.interval
			withInterval++
		}
		latency += s.latency
		inference += s.inference
	}

	n := time.Duration(len(t.samples))
	m.Latency = latency / n
	m.InferenceTime = inference / n
	if withInterval > 0 {
		mean := intervals / time.Duration(withInterval)
		if mean > 0 {
			m.FPS = float64(time.Second) / float64(mean)
		}
	}
	return m
}
