package api

import "time"

// EmotionState is the wire form of one smoothed, quality-annotated result.
type EmotionState struct {
	Sequence      uint64             `json:"sequence"`
	SessionID     string             `json:"session_id"`
	Emotion       string             `json:"emotion"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Warnings      []string           `json:"warnings"`
	Status        string             `json:"status"`
	FaceFound     bool               `json:"face_found"`
	CapturedAt    time.Time          `json:"captured_at"`
	OffsetSeconds float64            `json:"offset_seconds"`
	Metrics       Metrics            `json:"metrics"`
}

// Metrics is the wire form of pipeline throughput figures.
type Metrics struct {
	FPS         float64 `json:"fps"`
	LatencyMS   float64 `json:"latency_ms"`
	InferenceMS float64 `json:"inference_ms"`
}

// PipelineStatus is the wire form of the pipeline snapshot. Emotion and
// Confidence are the smoothing window's current dominant read.
type PipelineStatus struct {
	Running             bool      `json:"running"`
	SessionID           string    `json:"session_id"`
	SessionStart        time.Time `json:"session_start"`
	Status              string    `json:"status"`
	Emotion             string    `json:"emotion"`
	Confidence          float64   `json:"confidence"`
	RateFPS             int       `json:"rate_fps"`
	WindowFill          int       `json:"window_fill"`
	WindowSize          int       `json:"window_size"`
	FramesAccepted      uint64    `json:"frames_accepted"`
	FramesDropped       uint64    `json:"frames_dropped"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Metrics             Metrics   `json:"metrics"`
}

// DaemonStatus represents combined daemon and pipeline status information.
type DaemonStatus struct {
	Running   bool           `json:"running"`
	PID       int            `json:"pid"`
	LockPath  string         `json:"lock_path"`
	Pipeline  PipelineStatus `json:"pipeline"`
	Consumers []string       `json:"consumers"`
}

// DetectorHealth is the wire form of the detector's own health report.
type DetectorHealth struct {
	Reachable   bool    `json:"reachable"`
	Status      string  `json:"status"`
	FPS         float64 `json:"fps"`
	InferenceMS float64 `json:"avg_inference_ms"`
	Error       string  `json:"error,omitempty"`
}

// HealthResponse reports daemon and detector health together.
type HealthResponse struct {
	Daemon   string         `json:"daemon"`
	Pipeline string         `json:"pipeline"`
	Detector DetectorHealth `json:"detector"`
}

// ViewAggregates is the wire form of one consumer view's session aggregates.
type ViewAggregates struct {
	View     string            `json:"view"`
	Updates  uint64            `json:"updates"`
	Counters map[string]uint64 `json:"counters"`
}

// AggregatesResponse lists every view's aggregates.
type AggregatesResponse struct {
	SessionID string           `json:"session_id"`
	Views     []ViewAggregates `json:"views"`
}

// ResetResponse reports the outcome of a session reset.
type ResetResponse struct {
	Reset     bool   `json:"reset"`
	SessionID string `json:"session_id"`
}
