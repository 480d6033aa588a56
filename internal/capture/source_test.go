package capture

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestSyntheticSourceCountsFrames(t *testing.T) {
	src := NewSyntheticSource(64)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		frame, err := src.Capture(ctx)
		if err != nil {
			t.Fatalf("capture: %v", err)
		}
		if got := binary.BigEndian.Uint64(frame.Data); got != want {
			t.Fatalf("expected frame counter %d, got %d", want, got)
		}
		if frame.CapturedAt.IsZero() {
			t.Fatal("expected a capture timestamp")
		}
	}
}

func TestSyntheticSourceHonorsContext(t *testing.T) {
	src := NewSyntheticSource(32)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.Capture(ctx); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestDirectorySourceLoops(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.jpg", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}

	src, err := NewDirectorySource(dir)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	ctx := context.Background()
	var seen []string
	for i := 0; i < 4; i++ {
		frame, err := src.Capture(ctx)
		if err != nil {
			t.Fatalf("capture %d: %v", i, err)
		}
		seen = append(seen, string(frame.Data))
	}

	want := []string{"a.jpg", "b.jpg", "a.jpg", "b.jpg"}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("frame %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestDirectorySourceRejectsEmptyDir(t *testing.T) {
	if _, err := NewDirectorySource(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without images")
	}
}
