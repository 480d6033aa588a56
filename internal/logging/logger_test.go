package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelDebug)
	return slog.New(newConsoleHandler(&buf, levelVar)), &buf
}

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	logger, buf := newBufferLogger(t)
	NewComponentLogger(logger, "pipeline").Info("session started", String(FieldSessionID, "abc"))

	line := buf.String()
	if !strings.Contains(line, " INFO pipeline: session started") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "session_id=abc") {
		t.Fatalf("expected session_id attr, got: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component must be promoted out of the attr list: %q", line)
	}
}

func TestConsoleHandlerQuotesAwkwardValues(t *testing.T) {
	logger, buf := newBufferLogger(t)
	logger.Warn("quality", String("warning", "Low lighting detected"))

	if !strings.Contains(buf.String(), `warning="Low lighting detected"`) {
		t.Fatalf("expected quoted value, got: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewJSONLogger(t *testing.T) {
	logger, err := New(Options{Format: "json", Level: "debug", OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if parseLevel("verbose") != slog.LevelInfo {
		t.Fatal("unknown levels must fall back to info")
	}
	if parseLevel("debug") != slog.LevelDebug {
		t.Fatal("debug must parse")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	// Must not panic and must report disabled at every level.
	logger := NewNop()
	logger.Error("dropped")
	if logger.Enabled(nil, slog.LevelError) {
		t.Fatal("nop logger must be disabled")
	}
}
