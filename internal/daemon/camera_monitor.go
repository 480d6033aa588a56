package daemon

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"
	"golang.org/x/sys/unix"

	"signalstate/internal/config"
	"signalstate/internal/logging"
	"signalstate/internal/pipeline"
)

// cameraMonitor listens for udev netlink events on the configured video
// device. Admission starts when the camera appears and stops when it is
// unplugged, so the daemon can idle without a camera attached.
type cameraMonitor struct {
	logger *slog.Logger
	pipe   *pipeline.Pipeline
	device string

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// newCameraMonitor returns nil when hotplug monitoring is not configured;
// the daemon then starts admission unconditionally.
func newCameraMonitor(cfg *config.Config, logger *slog.Logger, pipe *pipeline.Pipeline) *cameraMonitor {
	if cfg == nil || !cfg.Capture.Hotplug {
		return nil
	}
	device := strings.TrimSpace(cfg.Capture.Device)
	if device == "" {
		return nil
	}

	return &cameraMonitor{
		logger: logging.NewComponentLogger(logger, "camera-monitor"),
		pipe:   pipe,
		device: device,
	}
}

// Start begins listening for udev netlink events. When the device node is
// already present, admission starts immediately.
func (m *cameraMonitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket; starting admission without hotplug",
			logging.Error(err),
			logging.String(logging.FieldEventType, "netlink_connect_failed"),
			logging.String(logging.FieldErrorHint, "ensure the daemon has permission to access netlink sockets"),
			logging.String(logging.FieldImpact, "camera removal will not pause the pipeline"),
		)
		m.startPipeline(ctx)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("camera monitor started",
		logging.String(logging.FieldEventType, "camera_monitor_started"),
		logging.String("device", m.device),
	)

	if devicePresent(m.device) {
		m.startPipeline(ctx)
	} else {
		m.logger.Info("camera not attached, waiting for hotplug",
			logging.String("device", m.device))
	}
	return nil
}

// Stop shuts down the camera monitor.
func (m *cameraMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("camera monitor stopped",
		logging.String(logging.FieldEventType, "camera_monitor_stopped"))
}

func (m *cameraMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(events, errs, m.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			m.logger.Warn("camera monitor error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "camera_monitor_error"),
				logging.String(logging.FieldImpact, "camera hotplug events may be missed"),
			)
		}
	}
}

// buildMatcher matches video4linux add/remove events.
func (m *cameraMonitor) buildMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "video4linux",
		},
	})
	return rules
}

func (m *cameraMonitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	devname := extractDeviceName(uevent)
	if devname == "" || devname != m.device {
		return
	}

	switch uevent.Action {
	case netlink.ADD:
		m.logger.Info("camera attached",
			logging.String(logging.FieldEventType, "camera_attached"),
			logging.String("device", devname))
		m.startPipeline(ctx)
	case netlink.REMOVE:
		m.logger.Info("camera detached",
			logging.String(logging.FieldEventType, "camera_detached"),
			logging.String("device", devname))
		if err := m.pipe.Stop(); err != nil && !errors.Is(err, pipeline.ErrNotRunning) {
			m.logger.Warn("pipeline stop after camera removal failed", logging.Error(err))
		}
	}
}

func (m *cameraMonitor) startPipeline(ctx context.Context) {
	if err := m.pipe.Start(ctx); err != nil && !errors.Is(err, pipeline.ErrAlreadyRunning) {
		m.logger.Warn("pipeline start failed",
			logging.Error(err),
			logging.String("device", m.device))
	}
}

// devicePresent reports whether the node exists as a character device.
func devicePresent(path string) bool {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return false
	}
	return stat.Mode&unix.S_IFMT == unix.S_IFCHR
}

func extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		if !strings.HasPrefix(devname, "/dev/") {
			return "/dev/" + devname
		}
		return devname
	}

	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	if len(parts) == 0 {
		return ""
	}
	return "/dev/" + parts[len(parts)-1]
}
