package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"signalstate/internal/aggregate"
	"signalstate/internal/api"
	"signalstate/internal/capture"
	"signalstate/internal/config"
	"signalstate/internal/emotion"
	"signalstate/internal/fanout"
	"signalstate/internal/inference"
	"signalstate/internal/logging"
	"signalstate/internal/notifications"
	"signalstate/internal/pipeline"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	bus      *fanout.Bus
	agg      *aggregate.Aggregator
	pipe     *pipeline.Pipeline
	detector *inference.Client
	notifier notifications.Service
	source   capture.Source
	monitor  *cameraMonitor
	apiSrv   *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running   bool
	PID       int
	LockPath  string
	Pipeline  pipeline.Snapshot
	Consumers []string
}

// New constructs a daemon with all services wired: fan-out bus, built-in
// consumer views, inference client, capture source, and pipeline.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	bus := fanout.NewBus(logger)
	agg := aggregate.New(logger)
	for name, rule := range aggregate.Builtins() {
		handler, err := agg.Register(name, rule)
		if err != nil {
			return nil, fmt.Errorf("register view %s: %w", name, err)
		}
		if _, err := bus.Subscribe(name, handler); err != nil {
			return nil, fmt.Errorf("subscribe view %s: %w", name, err)
		}
	}

	detector := inference.NewClient(inference.Options{
		BaseURL:          cfg.Detector.BaseURL,
		RequestTimeout:   time.Duration(cfg.Detector.RequestTimeout) * time.Second,
		IncludeLandmarks: cfg.Detector.IncludeLandmarks,
		IncludeMetrics:   cfg.Detector.IncludeMetrics,
	}, logger)

	notifier := notifications.NewService(cfg)

	source, err := newSource(cfg)
	if err != nil {
		return nil, err
	}

	pipe, err := pipeline.New(pipeline.Options{
		Source:           source,
		Detector:         detector,
		Bus:              bus,
		Aggregates:       agg,
		Rate:             cfg.Pipeline.RateFPS,
		WindowSize:       cfg.Pipeline.WindowSize,
		ConfidenceFloor:  cfg.Pipeline.ConfidenceFloor,
		OfflineThreshold: cfg.Pipeline.OfflineThreshold,
		Thresholds:       cfg.QualityThresholds(),
		Notifier:         notifierAdapter{svc: notifier, logger: logger},
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		bus:      bus,
		agg:      agg,
		pipe:     pipe,
		detector: detector,
		notifier: notifier,
		source:   source,
		lockPath: cfg.Paths.LockPath,
		lock:     flock.New(cfg.Paths.LockPath),
	}
	d.monitor = newCameraMonitor(cfg, logger, pipe)
	d.apiSrv = newAPIServer(cfg, d, logger)
	return d, nil
}

func newSource(cfg *config.Config) (capture.Source, error) {
	switch cfg.Capture.Source {
	case "directory":
		return capture.NewDirectorySource(cfg.Capture.FramesDir)
	case "device":
		return capture.NewDeviceSource(cfg.Capture.Device)
	default:
		return capture.NewSyntheticSource(0), nil
	}
}

// Start acquires the daemon lock and launches the services. When hotplug
// monitoring is enabled the pipeline waits for the camera to appear;
// otherwise admission starts immediately.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another signalstate daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if d.apiSrv != nil {
		if err := d.apiSrv.start(runCtx); err != nil {
			_ = d.lock.Unlock()
			cancel()
			d.cancel = nil
			return err
		}
	}

	if d.monitor != nil {
		if err := d.monitor.Start(runCtx); err != nil {
			d.logger.Warn("camera monitor unavailable", logging.Error(err))
		}
	} else {
		if err := d.pipe.Start(runCtx); err != nil {
			d.logger.Warn("pipeline autostart failed", logging.Error(err))
		}
	}

	d.running.Store(true)
	d.logger.Info("signalstate daemon started",
		logging.String(logging.FieldEventType, "daemon_start"),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop stops the services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.monitor != nil {
		d.monitor.Stop()
	}
	if err := d.pipe.Stop(); err != nil && !errors.Is(err, pipeline.ErrNotRunning) {
		d.logger.Warn("pipeline stop failed", logging.Error(err))
	}
	if d.apiSrv != nil {
		d.apiSrv.stop()
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("signalstate daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stop"))
}

// Close stops the daemon and tears down the bus and capture source. The
// pipeline is stopped even when the daemon itself was never started, since
// IPC can run admission on its own.
func (d *Daemon) Close() error {
	d.Stop()
	if err := d.pipe.Stop(); err != nil && !errors.Is(err, pipeline.ErrNotRunning) {
		d.logger.Warn("pipeline stop failed", logging.Error(err))
	}
	d.bus.Close()
	if d.source != nil {
		return d.source.Close()
	}
	return nil
}

// StartPipeline begins frame admission.
func (d *Daemon) StartPipeline(ctx context.Context) error {
	return d.pipe.Start(ctx)
}

// StopPipeline halts frame admission. The daemon itself stays up.
func (d *Daemon) StopPipeline() error {
	return d.pipe.Stop()
}

// SetRate changes the admission rate, taking effect on the next tick.
func (d *Daemon) SetRate(fps int) error {
	return d.pipe.SetRate(fps)
}

// ResetSession clears the smoothing window and session aggregates.
func (d *Daemon) ResetSession() api.ResetResponse {
	snap := d.pipe.Status()
	d.pipe.Reset()
	return api.ResetResponse{Reset: true, SessionID: snap.SessionID}
}

// Status reports daemon runtime information.
func (d *Daemon) Status() Status {
	consumers := d.bus.SubscriberIDs()
	sort.Strings(consumers)
	return Status{
		Running:   d.running.Load(),
		PID:       os.Getpid(),
		LockPath:  d.lockPath,
		Pipeline:  d.pipe.Status(),
		Consumers: consumers,
	}
}

// State returns the latest published state, or nil before the first frame.
func (d *Daemon) State() *emotion.SmoothedState {
	return d.pipe.LastState()
}

// Aggregates returns every view's session aggregates plus the session id.
func (d *Daemon) Aggregates() (string, []aggregate.Snapshot) {
	return d.pipe.Status().SessionID, d.agg.Views()
}

// DetectorHealth queries the inference service's own health endpoint.
func (d *Daemon) DetectorHealth(ctx context.Context) api.DetectorHealth {
	report, err := d.detector.Health(ctx)
	if err != nil {
		return api.DetectorHealth{Reachable: false, Error: err.Error()}
	}
	return api.DetectorHealth{
		Reachable:   true,
		Status:      report.Status,
		FPS:         report.FPS,
		InferenceMS: report.AvgInferenceMS,
	}
}

// TestNotification sends a test push notification.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "no ntfy topic configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, err.Error(), err
	}
	return true, "notification sent", nil
}

// notifierAdapter bridges the pipeline's synchronous callbacks onto the
// notification service. Sends happen off the pipeline goroutine; failures
// are logged, never propagated.
type notifierAdapter struct {
	svc    notifications.Service
	logger *slog.Logger
}

func (a notifierAdapter) send(name string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			logging.NewComponentLogger(a.logger, "notifications").
				Warn("notification failed", logging.String("event", name), logging.Error(err))
		}
	}()
}

func (a notifierAdapter) SessionStarted(id string) {
	a.send("session_started", func(ctx context.Context) error {
		return a.svc.NotifySessionStarted(ctx, id)
	})
}

func (a notifierAdapter) SessionReset(id string) {
	a.send("session_reset", func(ctx context.Context) error {
		return a.svc.NotifySessionReset(ctx, id)
	})
}

func (a notifierAdapter) DetectorOffline(failures int) {
	a.send("detector_offline", func(ctx context.Context) error {
		return a.svc.NotifyDetectorOffline(ctx, failures)
	})
}

func (a notifierAdapter) DetectorRecovered() {
	a.send("detector_recovered", func(ctx context.Context) error {
		return a.svc.NotifyDetectorRecovered(ctx)
	})
}
