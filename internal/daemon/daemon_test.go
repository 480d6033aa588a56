package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/pilebones/go-udev/netlink"

	"signalstate/internal/aggregate"
	"signalstate/internal/api"
	"signalstate/internal/logging"
	"signalstate/internal/testsupport"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	// Point at a dead port so inference fails fast instead of timing out.
	cfg.Detector.BaseURL = "http://127.0.0.1:1"

	d, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestNewRegistersBuiltinConsumers(t *testing.T) {
	d := newTestDaemon(t)

	consumers := d.Status().Consumers
	sort.Strings(consumers)
	want := []string{
		aggregate.ViewAccessibility,
		aggregate.ViewCX,
		aggregate.ViewExplainability,
		aggregate.ViewLearning,
		aggregate.ViewLive,
		aggregate.ViewResearch,
	}
	if len(consumers) != len(want) {
		t.Fatalf("expected %d consumers, got %v", len(want), consumers)
	}
	for i, name := range want {
		if consumers[i] != name {
			t.Fatalf("expected consumer %s, got %s", name, consumers[i])
		}
	}
}

func TestSecondStartRejectedByLock(t *testing.T) {
	d := newTestDaemon(t)

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}
	d.Stop()
}

func TestStatusEndpoint(t *testing.T) {
	d := newTestDaemon(t)
	srv := httptest.NewServer(d.apiSrv.server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(status.Consumers) != 6 {
		t.Fatalf("expected 6 consumers in status, got %d", len(status.Consumers))
	}
	if status.Pipeline.WindowSize != 5 {
		t.Fatalf("expected window size 5, got %d", status.Pipeline.WindowSize)
	}
}

func TestStateEndpointBeforeFirstFrame(t *testing.T) {
	d := newTestDaemon(t)
	srv := httptest.NewServer(d.apiSrv.server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before any frame, got %d", resp.StatusCode)
	}
}

func TestResetEndpointRequiresPost(t *testing.T) {
	d := newTestDaemon(t)
	srv := httptest.NewServer(d.apiSrv.server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/reset")
	if err != nil {
		t.Fatalf("get reset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/reset", "application/json", nil)
	if err != nil {
		t.Fatalf("post reset: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var reset api.ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&reset); err != nil {
		t.Fatalf("decode reset: %v", err)
	}
	if !reset.Reset {
		t.Fatal("expected reset=true")
	}
}

func TestBearerAuth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Detector.BaseURL = "http://127.0.0.1:1"
	cfg.Paths.APIToken = "sekrit"

	d, err := New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	srv := httptest.NewServer(d.apiSrv.server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/status", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authorized get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", resp.StatusCode)
	}
}

func TestAggregatesEndpoint(t *testing.T) {
	d := newTestDaemon(t)
	srv := httptest.NewServer(d.apiSrv.server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/aggregates")
	if err != nil {
		t.Fatalf("get aggregates: %v", err)
	}
	defer resp.Body.Close()

	var payload api.AggregatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode aggregates: %v", err)
	}
	if len(payload.Views) != 6 {
		t.Fatalf("expected 6 views, got %d", len(payload.Views))
	}
}

func TestPipelinePublishesUnderDaemon(t *testing.T) {
	d := newTestDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer d.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if d.State() != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no state published while running")
}

func TestExtractDeviceName(t *testing.T) {
	cases := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{"DEVNAME": "/dev/video0"}, "/dev/video0"},
		{map[string]string{"DEVNAME": "video1"}, "/dev/video1"},
		{map[string]string{"DEVPATH": "/devices/pci0000:00/usb1/video4linux/video2"}, "/dev/video2"},
		{map[string]string{}, ""},
	}
	for _, tc := range cases {
		got := extractDeviceName(netlink.UEvent{Env: tc.env})
		if got != tc.want {
			t.Fatalf("env %v: expected %q, got %q", tc.env, tc.want, got)
		}
	}
}

func TestDevicePresentMissingNode(t *testing.T) {
	if devicePresent("/dev/signalstate-no-such-device") {
		t.Fatal("nonexistent node reported present")
	}
}
