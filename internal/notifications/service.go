package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"signalstate/internal/config"
)

const userAgent = "Signalstate-Go/0.1.0"

// Service defines the notification surface exposed to the daemon and
// pipeline.
type Service interface {
	NotifySessionStarted(ctx context.Context, sessionID string) error
	NotifySessionReset(ctx context.Context, sessionID string) error
	NotifyDetectorOffline(ctx context.Context, failures int) error
	NotifyDetectorRecovered(ctx context.Context) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		sessionEvents:  cfg.Notifications.SessionEvents,
		detectorEvents: cfg.Notifications.DetectorEvents,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	sessionEvents  bool
	detectorEvents bool
}

func (n *ntfyService) NotifySessionStarted(ctx context.Context, sessionID string) error {
	if !n.sessionEvents {
		return nil
	}
	data := payload{
		title:   "Signalstate - Session Started",
		message: fmt.Sprintf("New emotion session %s", shortID(sessionID)),
		tags:    []string{"signalstate", "session", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionReset(ctx context.Context, sessionID string) error {
	if !n.sessionEvents {
		return nil
	}
	data := payload{
		title:   "Signalstate - Session Reset",
		message: fmt.Sprintf("Session %s window and aggregates cleared", shortID(sessionID)),
		tags:    []string{"signalstate", "session", "reset"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDetectorOffline(ctx context.Context, failures int) error {
	if !n.detectorEvents {
		return nil
	}
	data := payload{
		title:    "Signalstate - Detector Offline",
		message:  fmt.Sprintf("Inference service unreachable after %d consecutive failures; serving synthetic states", failures),
		tags:     []string{"signalstate", "detector", "offline"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDetectorRecovered(ctx context.Context) error {
	if !n.detectorEvents {
		return nil
	}
	data := payload{
		title:   "Signalstate - Detector Recovered",
		message: "Inference service answering again; live results resumed",
		tags:    []string{"signalstate", "detector", "recovered"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Signalstate - Test",
		message:  "Notification system test",
		tags:     []string{"signalstate", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type noopService struct{}

func (noopService) NotifySessionStarted(context.Context, string) error { return nil }
func (noopService) NotifySessionReset(context.Context, string) error   { return nil }
func (noopService) NotifyDetectorOffline(context.Context, int) error   { return nil }
func (noopService) NotifyDetectorRecovered(context.Context) error      { return nil }
func (noopService) TestNotification(context.Context) error             { return nil }
