package inference

import "errors"

var (
	// ErrUnreachable marks connection-level failures reaching the detector.
	ErrUnreachable = errors.New("detector unreachable")
	// ErrTimeout marks a detect call that exceeded its deadline.
	ErrTimeout = errors.New("detector timeout")
	// ErrInvalidResponse marks malformed or out-of-range detector payloads.
	// Treated identically to unreachability by the pipeline.
	ErrInvalidResponse = errors.New("invalid detector response")
)
