package quality

import "signalstate/internal/emotion"

// Face-mesh indices for the points the pose estimate relies on.
const (
	noseTipIndex  = 1
	leftEyeIndex  = 33
	rightEyeIndex = 263
)

// EstimatePose approximates head yaw and pitch in degrees from normalized
// landmark geometry. Yaw follows horizontal eye asymmetry, pitch follows the
// vertical offset of the nose tip from the eye line. Returns zeros when the
// mesh is too sparse to reach the reference points.
func EstimatePose(landmarks []emotion.Landmark) (yaw, pitch float64) {
	if len(landmarks) <= rightEyeIndex {
		return 0, 0
	}
	nose := landmarks[noseTipIndex]
	left := landmarks[leftEyeIndex]
	right := landmarks[rightEyeIndex]

	yaw = (left.X - right.X) * 90
	pitch = (nose.Y - (left.Y+right.Y)/2) * 90
	return yaw, pitch
}
