package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// defaultFrameBytes bounds a single read from the device node.
const defaultFrameBytes = 1 << 20

// DeviceSource reads encoded frames straight from a character device node.
// It relies on the driver supporting read I/O; format negotiation is the
// grabber's job, not ours.
type DeviceSource struct {
	path  string
	file  *os.File
	limit int
}

// NewDeviceSource opens the device node and verifies it is a character
// device.
func NewDeviceSource(path string) (*DeviceSource, error) {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return nil, fmt.Errorf("stat device %s: %w", path, err)
	}
	if stat.Mode&unix.S_IFMT != unix.S_IFCHR {
		return nil, fmt.Errorf("device %s is not a character device", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", path, err)
	}
	return &DeviceSource{path: path, file: file, limit: defaultFrameBytes}, nil
}

// Capture reads one frame-sized chunk from the device.
func (s *DeviceSource) Capture(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	buf := make([]byte, s.limit)
	n, err := s.file.Read(buf)
	if err != nil {
		return Frame{}, fmt.Errorf("read device %s: %w", s.path, err)
	}
	return Frame{Data: buf[:n], CapturedAt: time.Now()}, nil
}

// Close releases the device node.
func (s *DeviceSource) Close() error {
	return s.file.Close()
}
