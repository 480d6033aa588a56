package capture

import (
	"context"
	"encoding/binary"
	"time"
)

// SyntheticSource emits deterministic placeholder frames. Used when no real
// capture device is configured and by tests that only need frame plumbing.
type SyntheticSource struct {
	counter uint64
	payload int
}

// NewSyntheticSource builds a source producing frames of payloadSize bytes.
func NewSyntheticSource(payloadSize int) *SyntheticSource {
	if payloadSize < 16 {
		payloadSize = 16
	}
	return &SyntheticSource{payload: payloadSize}
}

// Capture returns the next synthetic frame. The leading eight bytes carry the
// frame counter so downstream stubs can assert ordering.
func (s *SyntheticSource) Capture(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	s.counter++
	data := make([]byte, s.payload)
	binary.BigEndian.PutUint64(data, s.counter)
	for i := 8; i < len(data); i++ {
		data[i] = byte(s.counter + uint64(i))
	}
	return Frame{Data: data, CapturedAt: time.Now()}, nil
}

// Close implements Source.
func (s *SyntheticSource) Close() error { return nil }
