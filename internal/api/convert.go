package api

import (
	"time"

	"signalstate/internal/aggregate"
	"signalstate/internal/emotion"
	"signalstate/internal/pipeline"
)

// FromSmoothedState converts an internal state to its wire form.
func FromSmoothedState(st *emotion.SmoothedState) *EmotionState {
	if st == nil {
		return nil
	}
	return &EmotionState{
		Sequence:      st.Sequence,
		SessionID:     st.SessionID,
		Emotion:       string(st.Dominant),
		Confidence:    st.Confidence,
		Probabilities: st.Distribution.Map(),
		Warnings:      append([]string(nil), st.Quality.Warnings...),
		Status:        string(st.Status),
		FaceFound:     st.FaceFound,
		CapturedAt:    st.CapturedAt,
		OffsetSeconds: st.SessionOffset.Seconds(),
		Metrics:       FromMetrics(st.Metrics),
	}
}

// FromMetrics converts pipeline metrics to their wire form.
func FromMetrics(m emotion.PipelineMetrics) Metrics {
	return Metrics{
		FPS:         m.FPS,
		LatencyMS:   durationMS(m.Latency),
		InferenceMS: durationMS(m.InferenceTime),
	}
}

// FromSnapshot converts a pipeline snapshot to its wire form.
func FromSnapshot(s pipeline.Snapshot) PipelineStatus {
	return PipelineStatus{
		Running:             s.Running,
		SessionID:           s.SessionID,
		SessionStart:        s.SessionStart,
		Status:              string(s.Status),
		Emotion:             string(s.Emotion),
		Confidence:          s.Confidence,
		RateFPS:             s.Rate,
		WindowFill:          s.WindowFill,
		WindowSize:          s.WindowSize,
		FramesAccepted:      s.FramesAccepted,
		FramesDropped:       s.FramesDropped,
		ConsecutiveFailures: s.ConsecutiveFailures,
		Metrics:             FromMetrics(s.Metrics),
	}
}

// FromAggregates converts view snapshots to their wire form.
func FromAggregates(snaps []aggregate.Snapshot) []ViewAggregates {
	out := make([]ViewAggregates, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, ViewAggregates{
			View:     snap.View,
			Updates:  snap.Updates,
			Counters: snap.Counters,
		})
	}
	return out
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
