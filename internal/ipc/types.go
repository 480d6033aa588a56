package ipc

import "signalstate/internal/api"

// StartRequest begins frame admission.
type StartRequest struct{}

// StartResponse indicates whether admission was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest halts frame admission.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool   `json:"stopped"`
	Message string `json:"message"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse mirrors the HTTP status DTO for IPC callers.
type StatusResponse struct {
	Running   bool               `json:"running"`
	PID       int                `json:"pid"`
	LockPath  string             `json:"lock_path"`
	Pipeline  api.PipelineStatus `json:"pipeline"`
	Consumers []string           `json:"consumers"`
}

// ResetRequest clears the smoothing window and session aggregates.
type ResetRequest struct{}

// ResetResponse reports the reset outcome.
type ResetResponse = api.ResetResponse

// StateRequest fetches the latest smoothed state.
type StateRequest struct{}

// StateResponse carries the latest state, nil before the first frame.
type StateResponse struct {
	State *api.EmotionState `json:"state"`
}

// AggregatesRequest fetches per-view session aggregates.
type AggregatesRequest struct{}

// AggregatesResponse lists every view's aggregates.
type AggregatesResponse = api.AggregatesResponse

// RateRequest changes the admission rate.
type RateRequest struct {
	FPS int `json:"fps"`
}

// RateResponse confirms the applied rate.
type RateResponse struct {
	FPS int `json:"fps"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
