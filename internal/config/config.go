package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"signalstate/internal/quality"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains filesystem locations and the API bind address.
type Paths struct {
	LogDir     string `toml:"log_dir"`
	SocketPath string `toml:"socket_path"`
	LockPath   string `toml:"lock_path"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Detector contains connection settings for the external inference service.
type Detector struct {
	BaseURL          string `toml:"base_url"`
	RequestTimeout   int    `toml:"request_timeout"`
	IncludeLandmarks bool   `toml:"include_landmarks"`
	IncludeMetrics   bool   `toml:"include_metrics"`
}

// Pipeline contains admission and smoothing settings.
type Pipeline struct {
	RateFPS          int     `toml:"rate_fps"`
	WindowSize       int     `toml:"window_size"`
	ConfidenceFloor  float64 `toml:"confidence_floor"`
	OfflineThreshold int     `toml:"offline_threshold"`
}

// Quality contains the frame-quality assessment thresholds.
type Quality struct {
	BrightnessMin   float64 `toml:"brightness_min"`
	BrightnessMax   float64 `toml:"brightness_max"`
	MaxYawDegrees   float64 `toml:"max_yaw_degrees"`
	MaxPitchDegrees float64 `toml:"max_pitch_degrees"`
	MinLandmarks    int     `toml:"min_landmarks"`
}

// Capture selects where frames come from.
type Capture struct {
	// Source is one of "synthetic", "directory" or "device".
	Source    string `toml:"source"`
	Device    string `toml:"device"`
	FramesDir string `toml:"frames_dir"`
	Hotplug   bool   `toml:"hotplug"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	SessionEvents  bool   `toml:"session_events"`
	DetectorEvents bool   `toml:"detector_events"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Signalstate.
//
// Configuration sections by subsystem:
//   - Paths: log directory, control socket, lock file, API bind address
//   - Detector: external inference service connection
//   - Pipeline: admission rate, smoothing window, offline threshold
//   - Quality: lighting, head-pose and occlusion thresholds
//   - Capture: frame source selection and camera hotplug
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Detector      Detector      `toml:"detector"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Quality       Quality       `toml:"quality"`
	Capture       Capture       `toml:"capture"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/signalstate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("signalstate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.LogDir,
		filepath.Dir(c.Paths.SocketPath),
		filepath.Dir(c.Paths.LockPath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// QualityThresholds converts the quality section into assessment thresholds.
func (c *Config) QualityThresholds() quality.Thresholds {
	return quality.Thresholds{
		BrightnessMin:   c.Quality.BrightnessMin,
		BrightnessMax:   c.Quality.BrightnessMax,
		MaxYawDegrees:   c.Quality.MaxYawDegrees,
		MaxPitchDegrees: c.Quality.MaxPitchDegrees,
		MinLandmarks:    c.Quality.MinLandmarks,
	}
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
