package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var frameExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// DirectorySource replays encoded images from a directory in lexical order,
// looping when the end is reached. Useful for reproducing a recorded run
// against a live detector.
type DirectorySource struct {
	paths []string
	next  int
}

// NewDirectorySource scans dir for image files. It fails when the directory
// holds no usable frames.
func NewDirectorySource(dir string) (*DirectorySource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := frameExtensions[ext]; !ok {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("frame directory %q contains no images", dir)
	}
	sort.Strings(paths)
	return &DirectorySource{paths: paths}, nil
}

// Capture reads the next image in sequence.
func (s *DirectorySource) Capture(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	path := s.paths[s.next]
	s.next = (s.next + 1) % len(s.paths)

	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, fmt.Errorf("read frame %s: %w", filepath.Base(path), err)
	}
	return Frame{Data: data, CapturedAt: time.Now()}, nil
}

// Close implements Source.
func (s *DirectorySource) Close() error { return nil }
