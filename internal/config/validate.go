package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetector() error {
	parsed, err := url.Parse(c.Detector.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("detector.base_url %q is not a valid URL (or set SIGNALSTATE_DETECTOR_URL)", c.Detector.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("detector.base_url scheme %q must be http or https", parsed.Scheme)
	}
	if c.Detector.RequestTimeout <= 0 {
		return errors.New("detector.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.RateFPS < 1 || c.Pipeline.RateFPS > 30 {
		return errors.New("pipeline.rate_fps must be between 1 and 30")
	}
	if c.Pipeline.WindowSize < 1 {
		return errors.New("pipeline.window_size must be at least 1")
	}
	if c.Pipeline.ConfidenceFloor < 0 || c.Pipeline.ConfidenceFloor > 1 {
		return errors.New("pipeline.confidence_floor must be between 0 and 1")
	}
	if c.Pipeline.OfflineThreshold < 1 {
		return errors.New("pipeline.offline_threshold must be at least 1")
	}
	return nil
}

func (c *Config) validateQuality() error {
	if c.Quality.BrightnessMin < 0 || c.Quality.BrightnessMax <= c.Quality.BrightnessMin {
		return errors.New("quality.brightness_max must be greater than quality.brightness_min")
	}
	if c.Quality.MaxYawDegrees <= 0 {
		return errors.New("quality.max_yaw_degrees must be positive")
	}
	if c.Quality.MaxPitchDegrees <= 0 {
		return errors.New("quality.max_pitch_degrees must be positive")
	}
	if c.Quality.MinLandmarks <= 0 {
		return errors.New("quality.min_landmarks must be positive")
	}
	return nil
}

func (c *Config) validateCapture() error {
	switch c.Capture.Source {
	case "synthetic":
	case "directory":
		if strings.TrimSpace(c.Capture.FramesDir) == "" {
			return errors.New("capture.frames_dir must be set when capture.source is \"directory\"")
		}
	case "device":
		if strings.TrimSpace(c.Capture.Device) == "" {
			return errors.New("capture.device must be set when capture.source is \"device\"")
		}
	default:
		return fmt.Errorf("capture.source %q must be one of synthetic, directory, device", c.Capture.Source)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}
