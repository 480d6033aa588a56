package aggregate

import (
	"signalstate/internal/emotion"
	"signalstate/internal/quality"
)

// Built-in view names registered at daemon start.
const (
	ViewLive           = "live"
	ViewResearch       = "research"
	ViewLearning       = "learning"
	ViewAccessibility  = "accessibility"
	ViewCX             = "cx"
	ViewExplainability = "explainability"
)

// lowConfidence marks smoothed results the explainability view counts as
// unreliable.
const lowConfidence = 0.4

// Builtins returns the stock rule for every built-in view.
func Builtins() map[string]Rule {
	return map[string]Rule{
		ViewLive:           Engagement,
		ViewResearch:       Switches,
		ViewLearning:       Attention,
		ViewAccessibility:  Tally,
		ViewCX:             Sentiment,
		ViewExplainability: Explainability,
	}
}

// Engagement classifies each state into an engaged/neutral/distracted mix.
func Engagement(s *State, st *emotion.SmoothedState) {
	if !st.FaceFound {
		s.Inc("absent")
		return
	}
	switch st.Dominant {
	case emotion.Happy, emotion.Surprise:
		s.Inc("engaged")
	case emotion.Neutral:
		s.Inc("neutral")
	default:
		s.Inc("distracted")
	}
}

// Switches counts transitions between distinct dominant emotions across
// consecutive face-bearing states.
func Switches(s *State, st *emotion.SmoothedState) {
	if !st.FaceFound {
		return
	}
	s.Inc("observations")
	if prev, ok := s.Previous(); ok && prev != st.Dominant {
		s.Inc("switches")
	}
}

// Attention buckets each state by where the subject appears to be looking,
// using the angle warnings from quality assessment.
func Attention(s *State, st *emotion.SmoothedState) {
	if !st.FaceFound {
		s.Inc("absent")
		return
	}
	for _, w := range st.Quality.Warnings {
		if w == quality.WarningTurned || w == quality.WarningTilted {
			s.Inc("looking_away")
			return
		}
	}
	s.Inc("attentive")
}

// Tally counts face-bearing states per dominant emotion.
func Tally(s *State, st *emotion.SmoothedState) {
	if !st.FaceFound {
		return
	}
	s.Inc(string(st.Dominant))
}

// Sentiment folds the dominant emotion into a positive/negative/neutral tally.
func Sentiment(s *State, st *emotion.SmoothedState) {
	if !st.FaceFound {
		return
	}
	switch st.Dominant {
	case emotion.Happy, emotion.Surprise:
		s.Inc("positive")
	case emotion.Neutral:
		s.Inc("neutral")
	default:
		s.Inc("negative")
	}
}

// Explainability tracks how often results were unreliable and why.
func Explainability(s *State, st *emotion.SmoothedState) {
	if st.FaceFound && st.Confidence < lowConfidence {
		s.Inc("low_confidence")
	}
	if st.Status != emotion.StatusHealthy {
		s.Inc("degraded")
	}
	s.Add("quality_warnings", uint64(len(st.Quality.Warnings)))
}
