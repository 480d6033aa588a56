package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("reported a file that does not exist")
	}
	if resolved == "" {
		t.Fatal("expected the resolved path even when missing")
	}
	if cfg.Pipeline.RateFPS != defaultRateFPS {
		t.Fatalf("expected default rate %d, got %d", defaultRateFPS, cfg.Pipeline.RateFPS)
	}
	if cfg.Detector.BaseURL != defaultDetectorBaseURL {
		t.Fatalf("expected default detector URL, got %s", cfg.Detector.BaseURL)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[detector]
base_url = "http://detector.local:9000/"
request_timeout = 2

[pipeline]
rate_fps = 15
window_size = 8

[logging]
format = "JSON"
level = "DEBUG"
`)

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected file to be reported present")
	}
	if cfg.Detector.BaseURL != "http://detector.local:9000" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Detector.BaseURL)
	}
	if cfg.Pipeline.RateFPS != 15 || cfg.Pipeline.WindowSize != 8 {
		t.Fatalf("pipeline overrides not applied: %+v", cfg.Pipeline)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging values not normalized: %+v", cfg.Logging)
	}
}

func TestDetectorURLEnvOverride(t *testing.T) {
	t.Setenv("SIGNALSTATE_DETECTOR_URL", "http://10.0.0.5:8000")

	path := writeConfig(t, `
[detector]
base_url = "http://detector.local:9000"
`)

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Detector.BaseURL != "http://10.0.0.5:8000" {
		t.Fatalf("env override lost: %q", cfg.Detector.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"rate too high": {
			mutate:  func(c *Config) { c.Pipeline.RateFPS = 31 },
			wantErr: "rate_fps",
		},
		"rate too low": {
			mutate:  func(c *Config) { c.Pipeline.RateFPS = -1 },
			wantErr: "rate_fps",
		},
		"zero window": {
			mutate:  func(c *Config) { c.Pipeline.WindowSize = -1 },
			wantErr: "window_size",
		},
		"confidence floor above one": {
			mutate:  func(c *Config) { c.Pipeline.ConfidenceFloor = 1.5 },
			wantErr: "confidence_floor",
		},
		"inverted brightness range": {
			mutate: func(c *Config) {
				c.Quality.BrightnessMin = 300
				c.Quality.BrightnessMax = 100
			},
			wantErr: "brightness_max",
		},
		"bad detector url": {
			mutate:  func(c *Config) { c.Detector.BaseURL = "not a url" },
			wantErr: "detector.base_url",
		},
		"unknown capture source": {
			mutate:  func(c *Config) { c.Capture.Source = "webcam2000" },
			wantErr: "capture.source",
		},
		"directory source without dir": {
			mutate: func(c *Config) {
				c.Capture.Source = "directory"
				c.Capture.FramesDir = ""
			},
			wantErr: "frames_dir",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("sample config missing after create")
	}
	if cfg.Pipeline.RateFPS != defaultRateFPS {
		t.Fatalf("sample changed the default rate: %d", cfg.Pipeline.RateFPS)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "run", "daemon.sock")
	cfg.Paths.LockPath = filepath.Join(base, "run", "daemon.lock")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, filepath.Dir(cfg.Paths.SocketPath)} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("directory %s missing: %v", dir, err)
		}
	}
}
