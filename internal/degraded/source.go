package degraded

import (
	"time"

	"signalstate/internal/emotion"
)

// rotation is the fixed label cycle synthetic results walk through. Kept
// small and calm on purpose: a degraded feed should read as placid, not as a
// believable emotional narrative.
var rotation = []emotion.Label{
	emotion.Neutral,
	emotion.Happy,
	emotion.Neutral,
	emotion.Surprise,
}

const (
	dominantMass      = 0.64
	nominalBrightness = 128
	syntheticLatency  = 2 * time.Millisecond
)

// Source generates a deterministic rotation of synthetic results. Not safe
// for concurrent use; the pipeline is its only caller.
type Source struct {
	next int
}

// NewSource returns a source starting at the beginning of the rotation.
func NewSource() *Source {
	return &Source{}
}

// Generate produces the next synthetic result. The distribution always sums
// to 1.0: the dominant label takes a fixed share and the remainder spreads
// uniformly over the other labels.
func (s *Source) Generate() *emotion.RawResult {
	label := rotation[s.next]
	s.next = (s.next + 1) % len(rotation)

	var dist emotion.Distribution
	rest := (1.0 - dominantMass) / float64(emotion.LabelCount-1)
	for i := range dist {
		dist[i] = rest
	}
	dist[label.Index()] = dominantMass

	return &emotion.RawResult{
		Probabilities: dist,
		FaceFound:     true,
		Brightness:    nominalBrightness,
		InferenceTime: syntheticLatency,
		CapturedAt:    time.Now(),
	}
}

// Reset rewinds the rotation to its starting point.
func (s *Source) Reset() {
	s.next = 0
}
