package testsupport

import (
	"path/filepath"
	"testing"

	"signalstate/internal/config"
)

// NewConfig returns a validated config rooted in a per-test temp directory.
// The capture source is synthetic and notifications are disabled, so tests
// never touch real devices or the network unless they opt in.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "daemon.sock")
	cfg.Paths.LockPath = filepath.Join(base, "daemon.lock")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Notifications.NtfyTopic = ""
	cfg.Capture.Source = "synthetic"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
