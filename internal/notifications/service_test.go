package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"signalstate/internal/config"
)

type recordedRequest struct {
	title   string
	tags    string
	body    string
	headers http.Header
}

func newRecordingServer(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{
			title:   r.Header.Get("Title"),
			tags:    r.Header.Get("Tags"),
			body:    string(body),
			headers: r.Header.Clone(),
		})
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)

	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func serviceFor(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNoTopicYieldsNoop(t *testing.T) {
	svc := NewService(serviceFor(""))
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifySessionStarted(context.Background(), "abc"); err != nil {
		t.Fatalf("noop returned error: %v", err)
	}
}

func TestSessionStartedSendsNtfyRequest(t *testing.T) {
	srv, recorded := newRecordingServer(t)
	svc := NewService(serviceFor(srv.URL))

	if err := svc.NotifySessionStarted(context.Background(), "0f8fad5b-d9cb-469f-a165-70867728950e"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	reqs := recorded()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if !strings.Contains(reqs[0].title, "Session Started") {
		t.Fatalf("unexpected title %q", reqs[0].title)
	}
	if !strings.Contains(reqs[0].body, "0f8fad5b") {
		t.Fatalf("message missing shortened session id: %q", reqs[0].body)
	}
	if strings.Contains(reqs[0].body, "70867728950e") {
		t.Fatalf("message carries the full session id: %q", reqs[0].body)
	}
}

func TestDetectorOfflineIsHighPriority(t *testing.T) {
	srv, recorded := newRecordingServer(t)
	svc := NewService(serviceFor(srv.URL))

	if err := svc.NotifyDetectorOffline(context.Background(), 3); err != nil {
		t.Fatalf("notify: %v", err)
	}

	reqs := recorded()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if got := reqs[0].headers.Get("Priority"); got != "high" {
		t.Fatalf("expected high priority, got %q", got)
	}
	if !strings.Contains(reqs[0].body, "3 consecutive failures") {
		t.Fatalf("message missing failure count: %q", reqs[0].body)
	}
}

func TestEventTogglesSuppressSends(t *testing.T) {
	srv, recorded := newRecordingServer(t)
	cfg := serviceFor(srv.URL)
	cfg.Notifications.SessionEvents = false
	cfg.Notifications.DetectorEvents = false
	svc := NewService(cfg)

	ctx := context.Background()
	if err := svc.NotifySessionStarted(ctx, "abc"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.NotifyDetectorOffline(ctx, 3); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := svc.TestNotification(ctx); err != nil {
		t.Fatalf("test notification: %v", err)
	}

	reqs := recorded()
	if len(reqs) != 1 {
		t.Fatalf("expected only the explicit test notification, got %d requests", len(reqs))
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	svc := NewService(serviceFor(srv.URL))
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected an error from a failing ntfy endpoint")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error does not carry the status code: %v", err)
	}
}
