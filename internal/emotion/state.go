package emotion

import "time"

// Status describes pipeline health as seen by consumers. It accompanies every
// delivered state so consumers can render appropriately without inspecting
// internals.
type Status string

const (
	// StatusHealthy means the last inference call succeeded.
	StatusHealthy Status = "healthy"
	// StatusDegraded means the last call failed and the state was produced
	// from the synthetic degraded-mode source for this tick only.
	StatusDegraded Status = "degraded"
	// StatusOffline means failures have been consecutive beyond the offline
	// threshold; it persists until a subsequent success.
	StatusOffline Status = "offline"
)

// PipelineMetrics carries throughput and latency figures measured over a
// bounded window of recent frames.
type PipelineMetrics struct {
	FPS           float64       `json:"fps"`
	Latency       time.Duration `json:"latency"`
	InferenceTime time.Duration `json:"inference_time"`
}

// SmoothedState is the stabilized, quality-annotated unit delivered to every
// consumer. Immutable once constructed; the fan-out bus shares one value by
// reference with all subscribers.
type SmoothedState struct {
	Sequence     uint64
	SessionID    string
	Dominant     Label
	Confidence   float64
	Distribution Distribution
	Quality      QualityReport
	Metrics      PipelineMetrics
	Status       Status
	FaceFound    bool
	CapturedAt   time.Time
	// SessionOffset is the session-relative timestamp of the admitted frame.
	SessionOffset time.Duration
}
