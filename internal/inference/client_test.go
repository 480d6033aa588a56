package inference

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"signalstate/internal/capture"
	"signalstate/internal/emotion"
	"signalstate/internal/logging"
)

func testFrame() capture.Frame {
	return capture.Frame{Data: []byte("not-really-a-jpeg"), CapturedAt: time.Now()}
}

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(Options{
		BaseURL:          url,
		RequestTimeout:   timeout,
		IncludeLandmarks: true,
		IncludeMetrics:   true,
	}, logging.NewNop())
}

func TestDetectSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"emotion": "Happy",
			"confidence": 0.8,
			"probabilities": {"Angry":0.02,"Disgust":0.02,"Fear":0.02,"Happy":0.8,"Sad":0.05,"Surprise":0.04,"Neutral":0.05},
			"landmarks": [{"x":0.5,"y":0.5,"z":0.0}],
			"metrics": {"fps": 9.7, "latency_ms": 30, "inference_ms": 20, "face_detected": true, "landmarks_count": 468, "brightness": 130},
			"timestamp": 1700000000.0
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Second)
	result, err := client.Detect(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	label, confidence := result.Probabilities.Dominant()
	if label != emotion.Happy || confidence != 0.8 {
		t.Fatalf("expected Happy/0.8, got %s/%f", label, confidence)
	}
	if !result.FaceFound {
		t.Fatal("expected face_detected to map to FaceFound")
	}
	if result.Brightness != 130 {
		t.Fatalf("expected brightness 130, got %f", result.Brightness)
	}
	if result.InferenceTime != 20*time.Millisecond {
		t.Fatalf("expected inference time from metrics, got %s", result.InferenceTime)
	}
	if len(result.Landmarks) != 1 {
		t.Fatalf("expected one landmark, got %d", len(result.Landmarks))
	}
}

func TestDetectRejectsBadDistribution(t *testing.T) {
	cases := map[string]string{
		"sum too low":   `{"probabilities": {"Angry":0.1,"Disgust":0.1,"Fear":0.1,"Happy":0.1,"Sad":0.1,"Surprise":0.1,"Neutral":0.1}, "metrics": {"face_detected": true}}`,
		"unknown label": `{"probabilities": {"Bored":1.0}, "metrics": {"face_detected": true}}`,
		"missing label": `{"probabilities": {"Happy":1.0}, "metrics": {"face_detected": true}}`,
		"negative":      `{"probabilities": {"Angry":-0.5,"Disgust":0.25,"Fear":0.25,"Happy":0.25,"Sad":0.25,"Surprise":0.25,"Neutral":0.25}, "metrics": {"face_detected": true}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, time.Second)
			if _, err := client.Detect(context.Background(), testFrame()); !errors.Is(err, ErrInvalidResponse) {
				t.Fatalf("expected ErrInvalidResponse, got %v", err)
			}
		})
	}
}

// Faceless responses carry the sentinel emotion, a zeroed distribution, and
// no metrics object at all.
func TestDetectNoFaceIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"emotion": "No Face Detected",
			"confidence": 0.0,
			"probabilities": {"Angry":0,"Disgust":0,"Fear":0,"Happy":0,"Sad":0,"Surprise":0,"Neutral":0},
			"warnings": ["No face detected in frame"],
			"timestamp": 1700000000.0
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Second)
	result, err := client.Detect(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if result.FaceFound {
		t.Fatal("expected FaceFound=false")
	}
	if sum := result.Probabilities.Sum(); sum != 0 {
		t.Fatalf("expected zeroed distribution, sum=%f", sum)
	}
	if result.Brightness >= 0 {
		t.Fatalf("expected unreported brightness, got %f", result.Brightness)
	}
}

// The detector's metrics object never includes brightness unless explicitly
// enabled; the result must flag it as unmeasured rather than report zero.
func TestDetectMetricsWithoutBrightness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"emotion": "Neutral",
			"confidence": 0.9,
			"probabilities": {"Angry":0.01,"Disgust":0.01,"Fear":0.01,"Happy":0.03,"Sad":0.02,"Surprise":0.02,"Neutral":0.9},
			"metrics": {"fps": 10.1, "latency_ms": 42, "inference_ms": 18, "face_detected": true, "landmarks_count": 468},
			"timestamp": 1700000000.0
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Second)
	result, err := client.Detect(context.Background(), testFrame())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if !result.FaceFound {
		t.Fatal("expected FaceFound=true")
	}
	if result.Brightness >= 0 {
		t.Fatalf("expected unreported brightness, got %f", result.Brightness)
	}
	if result.InferenceTime != 18*time.Millisecond {
		t.Fatalf("expected inference time from metrics, got %s", result.InferenceTime)
	}
}

func TestDetectServerErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Second)
	if _, err := client.Detect(context.Background(), testFrame()); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestDetectConnectionRefusedIsUnreachable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1", time.Second)
	if _, err := client.Detect(context.Background(), testFrame()); !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func TestDetectTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := newTestClient(srv.URL, 50*time.Millisecond)
	if _, err := client.Detect(context.Background(), testFrame()); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy","fps":9.7,"avg_inference_ms":21.5}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, time.Second)
	report, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if report.Status != "healthy" || report.FPS != 9.7 {
		t.Fatalf("unexpected report: %+v", report)
	}
}
