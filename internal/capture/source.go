package capture

import (
	"context"
	"time"
)

// Frame is one captured image sample: opaque encoded bytes plus a monotonic
// capture timestamp.
type Frame struct {
	Data       []byte
	CapturedAt time.Time
}

// Source produces frames on demand. Capture is called at most once per
// admission tick and must not block beyond the supplied context.
type Source interface {
	Capture(ctx context.Context) (Frame, error)
	Close() error
}
