package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDetector()
	c.normalizePipeline()
	if err := c.normalizeCapture(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LockPath) == "" {
		c.Paths.LockPath = defaultLockPath
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeDetector() {
	c.Detector.BaseURL = strings.TrimSpace(c.Detector.BaseURL)
	if value, ok := os.LookupEnv("SIGNALSTATE_DETECTOR_URL"); ok && strings.TrimSpace(value) != "" {
		c.Detector.BaseURL = strings.TrimSpace(value)
	}
	if c.Detector.BaseURL == "" {
		c.Detector.BaseURL = defaultDetectorBaseURL
	}
	c.Detector.BaseURL = strings.TrimRight(c.Detector.BaseURL, "/")
	if c.Detector.RequestTimeout <= 0 {
		c.Detector.RequestTimeout = defaultDetectorTimeout
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.RateFPS == 0 {
		c.Pipeline.RateFPS = defaultRateFPS
	}
	if c.Pipeline.WindowSize == 0 {
		c.Pipeline.WindowSize = defaultWindowSize
	}
	if c.Pipeline.ConfidenceFloor == 0 {
		c.Pipeline.ConfidenceFloor = defaultConfidenceFloor
	}
	if c.Pipeline.OfflineThreshold == 0 {
		c.Pipeline.OfflineThreshold = defaultOfflineThreshold
	}
}

func (c *Config) normalizeCapture() error {
	c.Capture.Source = strings.ToLower(strings.TrimSpace(c.Capture.Source))
	if c.Capture.Source == "" {
		c.Capture.Source = defaultCaptureSource
	}
	c.Capture.Device = strings.TrimSpace(c.Capture.Device)
	if c.Capture.Device == "" {
		c.Capture.Device = defaultCaptureDevice
	}
	if strings.TrimSpace(c.Capture.FramesDir) != "" {
		expanded, err := expandPath(c.Capture.FramesDir)
		if err != nil {
			return fmt.Errorf("capture.frames_dir: %w", err)
		}
		c.Capture.FramesDir = expanded
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
