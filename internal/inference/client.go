package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"signalstate/internal/capture"
	"signalstate/internal/emotion"
	"signalstate/internal/logging"
)

const userAgent = "Signalstate-Go/0.1.0"

// distributionTolerance is how far a detector-reported distribution may drift
// from unit mass before the payload is rejected. Looser than the internal
// tolerance because detectors round their floats.
const distributionTolerance = 0.01

// Options configures client construction.
type Options struct {
	BaseURL          string
	RequestTimeout   time.Duration
	IncludeLandmarks bool
	IncludeMetrics   bool
}

// Client is the single-attempt detector client.
type Client struct {
	opts   Options
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a client for the detector at opts.BaseURL.
func NewClient(opts Options, logger *slog.Logger) *Client {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	opts.RequestTimeout = timeout
	return &Client{
		opts:   opts,
		http:   &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "inference"),
	}
}

type detectRequest struct {
	Frame            string `json:"frame"`
	IncludeLandmarks bool   `json:"include_landmarks"`
	IncludeMetrics   bool   `json:"include_metrics"`
}

// noFaceEmotion is the sentinel emotion value faceless responses carry. Those
// responses omit the metrics object entirely, so face presence cannot be read
// from metrics alone.
const noFaceEmotion = "No Face Detected"

type detectResponse struct {
	Emotion       string             `json:"emotion"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	Landmarks     []landmarkPayload  `json:"landmarks"`
	Metrics       *detectMetrics     `json:"metrics"`
	Warnings      []string           `json:"warnings"`
	Timestamp     float64            `json:"timestamp"`
}

// detectMetrics mirrors the detector's metrics object. face_detected is a
// boolean on the wire and brightness is optional; absent fields keep their
// zero values.
type detectMetrics struct {
	FPS            float64  `json:"fps"`
	LatencyMS      float64  `json:"latency_ms"`
	InferenceMS    float64  `json:"inference_ms"`
	FaceDetected   *bool    `json:"face_detected"`
	LandmarksCount int      `json:"landmarks_count"`
	Brightness     *float64 `json:"brightness"`
}

type landmarkPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Detect submits one frame and returns the raw result or a typed failure.
// Exactly one attempt; the caller decides what a failure means.
func (c *Client) Detect(ctx context.Context, frame capture.Frame) (*emotion.RawResult, error) {
	payload, err := json.Marshal(detectRequest{
		Frame:            base64.StdEncoding.EncodeToString(frame.Data),
		IncludeLandmarks: c.opts.IncludeLandmarks,
		IncludeMetrics:   c.opts.IncludeMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("encode detect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+"/detect", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build detect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %s: %s", ErrUnreachable, resp.Status, bytes.TrimSpace(body))
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidResponse, resp.Status, bytes.TrimSpace(body))
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidResponse, err)
	}

	result, err := decoded.toRawResult(frame.CapturedAt, time.Since(started))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("detect call completed",
		logging.Duration("elapsed", time.Since(started)),
		logging.Bool("face_found", result.FaceFound))
	return result, nil
}

func (r detectResponse) toRawResult(capturedAt time.Time, elapsed time.Duration) (*emotion.RawResult, error) {
	faceFound := r.Emotion != noFaceEmotion
	if r.Metrics != nil && r.Metrics.FaceDetected != nil {
		faceFound = *r.Metrics.FaceDetected
	}

	dist, ok := emotion.FromMap(r.Probabilities)
	if !ok {
		return nil, fmt.Errorf("%w: unknown label in distribution", ErrInvalidResponse)
	}

	if faceFound {
		if len(r.Probabilities) != emotion.LabelCount {
			return nil, fmt.Errorf("%w: expected %d labels, got %d", ErrInvalidResponse, emotion.LabelCount, len(r.Probabilities))
		}
		if !dist.Valid(distributionTolerance) {
			return nil, fmt.Errorf("%w: distribution sums to %f", ErrInvalidResponse, dist.Sum())
		}
	} else if sum := dist.Sum(); math.Abs(sum) > distributionTolerance {
		// No-face responses carry a zeroed distribution.
		return nil, fmt.Errorf("%w: faceless frame carries probability mass %f", ErrInvalidResponse, sum)
	}

	landmarks := make([]emotion.Landmark, 0, len(r.Landmarks))
	for _, lm := range r.Landmarks {
		landmarks = append(landmarks, emotion.Landmark{X: lm.X, Y: lm.Y, Z: lm.Z})
	}

	inferenceTime := elapsed
	if r.Metrics != nil && r.Metrics.InferenceMS > 0 {
		inferenceTime = time.Duration(r.Metrics.InferenceMS * float64(time.Millisecond))
	}

	// Brightness stays negative unless the detector reported one, so quality
	// assessment can tell "dark frame" apart from "no measurement".
	brightness := -1.0
	if r.Metrics != nil && r.Metrics.Brightness != nil {
		brightness = *r.Metrics.Brightness
	}

	return &emotion.RawResult{
		Probabilities: dist,
		Landmarks:     landmarks,
		FaceFound:     faceFound,
		Brightness:    brightness,
		InferenceTime: inferenceTime,
		CapturedAt:    capturedAt,
	}, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
