package quality

import "signalstate/internal/emotion"

// Warning texts surfaced to consumers.
const (
	WarningLowLight    = "Low lighting detected - may affect accuracy"
	WarningOverexposed = "Overexposed lighting - may affect accuracy"
	WarningTurned      = "Face turned too far to the side"
	WarningTilted      = "Face tilted too much"
	WarningOccluded    = "Face partially occluded - landmarks missing"
	WarningNoFace      = "No face detected in frame"
	// WarningLowConfidence is appended downstream of smoothing when the
	// dominant probability falls under the configured floor.
	WarningLowConfidence = "Low confidence in emotion detection"
)

// Thresholds holds the tunable assessment limits.
type Thresholds struct {
	BrightnessMin   float64
	BrightnessMax   float64
	MaxYawDegrees   float64
	MaxPitchDegrees float64
	MinLandmarks    int
}

// DefaultThresholds returns the stock limits: brightness within [50,200],
// yaw within ±25°, pitch within ±20°, full refined mesh expected.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BrightnessMin:   50,
		BrightnessMax:   200,
		MaxYawDegrees:   25,
		MaxPitchDegrees: 20,
		MinLandmarks:    emotion.FullMeshLandmarks,
	}
}

// FrameStats carries per-frame signal features independent of landmarks.
// A negative Brightness means the detector reported no lighting measurement
// and the lighting rules do not apply.
type FrameStats struct {
	Brightness float64
	FaceFound  bool
}

// Assess derives the quality report for one frame. Multiple warnings may
// co-occur; the order is always lighting, angle, occlusion.
func Assess(landmarks []emotion.Landmark, stats FrameStats, th Thresholds) emotion.QualityReport {
	var warnings []string

	if stats.Brightness >= 0 {
		if stats.Brightness < th.BrightnessMin {
			warnings = append(warnings, WarningLowLight)
		} else if stats.Brightness > th.BrightnessMax {
			warnings = append(warnings, WarningOverexposed)
		}
	}

	if stats.FaceFound && len(landmarks) > 0 {
		yaw, pitch := EstimatePose(landmarks)
		if yaw > th.MaxYawDegrees || yaw < -th.MaxYawDegrees {
			warnings = append(warnings, WarningTurned)
		}
		if pitch > th.MaxPitchDegrees || pitch < -th.MaxPitchDegrees {
			warnings = append(warnings, WarningTilted)
		}
	}

	if stats.FaceFound && len(landmarks) > 0 && len(landmarks) < th.MinLandmarks {
		warnings = append(warnings, WarningOccluded)
	}

	return emotion.QualityReport{Warnings: warnings}
}
