package config

const (
	defaultLogDir               = "~/.local/share/signalstate/logs"
	defaultSocketPath           = "~/.local/share/signalstate/daemon.sock"
	defaultLockPath             = "~/.local/share/signalstate/daemon.lock"
	defaultAPIBind              = "127.0.0.1:7311"
	defaultDetectorBaseURL      = "http://127.0.0.1:8000"
	defaultDetectorTimeout      = 5
	defaultRateFPS              = 10
	defaultWindowSize           = 5
	defaultConfidenceFloor      = 0.4
	defaultOfflineThreshold     = 3
	defaultBrightnessMin        = 50
	defaultBrightnessMax        = 200
	defaultMaxYawDegrees        = 25
	defaultMaxPitchDegrees      = 20
	defaultMinLandmarks         = 478
	defaultCaptureSource        = "synthetic"
	defaultCaptureDevice        = "/dev/video0"
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
			LockPath:   defaultLockPath,
			APIBind:    defaultAPIBind,
		},
		Detector: Detector{
			BaseURL:          defaultDetectorBaseURL,
			RequestTimeout:   defaultDetectorTimeout,
			IncludeLandmarks: true,
			IncludeMetrics:   true,
		},
		Pipeline: Pipeline{
			RateFPS:          defaultRateFPS,
			WindowSize:       defaultWindowSize,
			ConfidenceFloor:  defaultConfidenceFloor,
			OfflineThreshold: defaultOfflineThreshold,
		},
		Quality: Quality{
			BrightnessMin:   defaultBrightnessMin,
			BrightnessMax:   defaultBrightnessMax,
			MaxYawDegrees:   defaultMaxYawDegrees,
			MaxPitchDegrees: defaultMaxPitchDegrees,
			MinLandmarks:    defaultMinLandmarks,
		},
		Capture: Capture{
			Source:  defaultCaptureSource,
			Device:  defaultCaptureDevice,
			Hotplug: false,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			SessionEvents:  true,
			DetectorEvents: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
