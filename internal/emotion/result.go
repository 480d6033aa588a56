package emotion

import "time"

// Landmark is a single normalized face-mesh point.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FullMeshLandmarks is the landmark count of a complete refined face mesh.
// Fewer points than this indicates partial occlusion.
const FullMeshLandmarks = 478

// RawResult is one unsmoothed inference output for a single frame. Produced
// once per successful detect call and never mutated afterwards. Brightness is
// negative when the detector did not measure it.
type RawResult struct {
	Probabilities Distribution
	Landmarks     []Landmark
	FaceFound     bool
	Brightness    float64
	InferenceTime time.Duration
	CapturedAt    time.Time
}

// QualityReport carries human-readable warnings derived from frame signal
// features. The warning order is stable (lighting, angle, occlusion) so
// consumers can render deterministically. An empty report means no concerns.
type QualityReport struct {
	Warnings []string `json:"warnings"`
}

// Empty reports whether the report carries no warnings.
func (r QualityReport) Empty() bool { return len(r.Warnings) == 0 }

// Append returns a report extended with additional warnings, preserving the
// original report. Reports are treated as immutable once attached to a state.
func (r QualityReport) Append(warnings ...string) QualityReport {
	if len(warnings) == 0 {
		return r
	}
	combined := make([]string, 0, len(r.Warnings)+len(warnings))
	combined = append(combined, r.Warnings...)
	combined = append(combined, warnings...)
	return QualityReport{Warnings: combined}
}
