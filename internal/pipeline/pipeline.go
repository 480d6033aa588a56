package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"signalstate/internal/capture"
	"signalstate/internal/degraded"
	"signalstate/internal/emotion"
	"signalstate/internal/fanout"
	"signalstate/internal/logging"
	"signalstate/internal/quality"
	"signalstate/internal/smoothing"
)

// Admission rate bounds in frames per second.
const (
	MinRate     = 1
	MaxRate     = 30
	DefaultRate = 10
)

// DefaultOfflineThreshold is how many consecutive inference failures flip the
// status from per-tick degraded to persistent offline.
const DefaultOfflineThreshold = 3

// DefaultConfidenceFloor is the smoothed-confidence level under which states
// carry a low-confidence warning. They are still delivered.
const DefaultConfidenceFloor = 0.4

var (
	// ErrAlreadyRunning is returned by Start when the loop is active.
	ErrAlreadyRunning = errors.New("pipeline: already running")
	// ErrNotRunning is returned by Stop when the loop is not active.
	ErrNotRunning = errors.New("pipeline: not running")
	// ErrNoSource is returned by Start when no capture source is configured.
	ErrNoSource = errors.New("pipeline: no capture source")
	// ErrRateOutOfRange is returned by SetRate for rates outside 1 to 30 fps.
	ErrRateOutOfRange = errors.New("pipeline: rate out of range")
)

// Detector is the inference surface the pipeline calls once per accepted
// frame.
type Detector interface {
	Detect(ctx context.Context, frame capture.Frame) (*emotion.RawResult, error)
}

// Notifier receives lifecycle events worth telling a human about.
type Notifier interface {
	SessionStarted(id string)
	SessionReset(id string)
	DetectorOffline(failures int)
	DetectorRecovered()
}

type nopNotifier struct{}

func (nopNotifier) SessionStarted(string) {}
func (nopNotifier) SessionReset(string)   {}
func (nopNotifier) DetectorOffline(int)   {}
func (nopNotifier) DetectorRecovered()    {}

// Resetter is anything whose session-scoped state clears alongside the
// smoothing window.
type Resetter interface {
	Reset()
}

// Options configures pipeline construction. Detector and Bus are required;
// Source is required only to Start the admission loop.
type Options struct {
	Source   capture.Source
	Detector Detector
	Bus      *fanout.Bus

	// Aggregates, when set, is cleared atomically with the smoothing window
	// on Reset.
	Aggregates Resetter

	Rate             int
	WindowSize       int
	Thresholds       quality.Thresholds
	ConfidenceFloor  float64
	OfflineThreshold int
	Notifier         Notifier
	Logger           *slog.Logger
}

// Pipeline is one session's admission loop and processing chain.
type Pipeline struct {
	source     capture.Source
	detector   Detector
	bus        *fanout.Bus
	aggregates Resetter
	notifier   Notifier
	logger     *slog.Logger

	thresholds       quality.Thresholds
	confidenceFloor  float64
	offlineThreshold int

	engine   *smoothing.Engine
	fallback *degraded.Source
	metrics  *tracker

	inFlight  atomic.Bool
	lastState atomic.Pointer[emotion.SmoothedState]
	wg        sync.WaitGroup

	mu           sync.Mutex
	running      bool
	cancel       context.CancelFunc
	loopDone     chan struct{}
	ticker       *time.Ticker
	rate         int
	sessionID    string
	sessionStart time.Time
	sequence     uint64
	accepted     uint64
	dropped      uint64
	failures     int
	status       emotion.Status
}

// New constructs a pipeline. Missing options fall back to defaults.
func New(opts Options) (*Pipeline, error) {
	if opts.Detector == nil {
		return nil, errors.New("pipeline: nil detector")
	}
	if opts.Bus == nil {
		return nil, errors.New("pipeline: nil bus")
	}
	if opts.Rate == 0 {
		opts.Rate = DefaultRate
	}
	if opts.Rate < MinRate || opts.Rate > MaxRate {
		return nil, fmt.Errorf("%w: %d fps", ErrRateOutOfRange, opts.Rate)
	}
	if opts.Thresholds == (quality.Thresholds{}) {
		opts.Thresholds = quality.DefaultThresholds()
	}
	if opts.ConfidenceFloor <= 0 {
		opts.ConfidenceFloor = DefaultConfidenceFloor
	}
	if opts.OfflineThreshold <= 0 {
		opts.OfflineThreshold = DefaultOfflineThreshold
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	return &Pipeline{
		source:           opts.Source,
		detector:         opts.Detector,
		bus:              opts.Bus,
		aggregates:       opts.Aggregates,
		notifier:         opts.Notifier,
		logger:           logging.NewComponentLogger(opts.Logger, "pipeline"),
		thresholds:       opts.Thresholds,
		confidenceFloor:  opts.ConfidenceFloor,
		offlineThreshold: opts.OfflineThreshold,
		engine:           smoothing.New(opts.WindowSize),
		fallback:         degraded.NewSource(),
		metrics:          newTracker(),
		rate:             opts.Rate,
		status:           emotion.StatusHealthy,
	}, nil
}

// Start launches the admission loop. Ticks capture a frame and submit it;
// ticks landing while a call is in flight are dropped.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}
	if p.source == nil {
		return ErrNoSource
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.loopDone = make(chan struct{})
	p.ticker = time.NewTicker(ratePeriod(p.rate))
	p.running = true

	p.logger.Info("admission loop started", logging.Int("rate_fps", p.rate))
	go p.run(loopCtx, p.ticker, p.loopDone)
	return nil
}

// Stop cancels the admission loop immediately and waits for the one possibly
// in-flight inference call to finish. The session ends with the loop; a later
// Start mints a fresh session id on its first accepted frame.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	p.running = false
	p.cancel()
	p.ticker.Stop()
	done := p.loopDone
	p.mu.Unlock()

	<-done
	p.wg.Wait()

	p.mu.Lock()
	p.sessionID = ""
	p.sessionStart = time.Time{}
	p.sequence = 0
	p.mu.Unlock()

	p.logger.Info("admission loop stopped")
	return nil
}

func (p *Pipeline) run(ctx context.Context, ticker *time.Ticker, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Pipeline) tick(ctx context.Context) {
	if p.inFlight.Load() {
		// Latest-wins: skip the capture entirely while a call is out.
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		return
	}

	frame, err := p.source.Capture(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("frame capture failed", logging.Error(err))
		}
		return
	}
	p.Submit(frame)
}

// Submit offers one frame for processing. It reports false, dropping the
// frame, when an inference call is already in flight.
func (p *Pipeline) Submit(frame capture.Frame) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		return false
	}

	p.mu.Lock()
	p.accepted++
	if p.sessionID == "" {
		p.sessionID = uuid.NewString()
		p.sessionStart = frame.CapturedAt
		p.logger.Info("session started", logging.String(logging.FieldSessionID, p.sessionID))
		p.notifier.SessionStarted(p.sessionID)
	}
	p.mu.Unlock()

	p.wg.Add(1)
	go p.process(frame)
	return true
}

// process runs the inference call and pushes the resulting state downstream.
// Deliberately not cancelled on Stop: the call completes or times out on the
// client's own deadline, and the in-flight flag clears on every path.
func (p *Pipeline) process(frame capture.Frame) {
	defer p.wg.Done()
	defer p.inFlight.Store(false)

	result, err := p.detector.Detect(context.Background(), frame)

	state := p.buildState(frame, result, err)
	latency := time.Since(frame.CapturedAt)
	state.Metrics = p.metrics.observe(latency, state.Metrics.InferenceTime, time.Now())

	p.lastState.Store(state)
	p.bus.Publish(state)
}

// buildState folds one inference outcome into the session under the lock:
// failure accounting, smoothing, quality annotation and status.
func (p *Pipeline) buildState(frame capture.Frame, result *emotion.RawResult, err error) *emotion.SmoothedState {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := emotion.StatusHealthy
	if err != nil {
		p.failures++
		result = p.fallback.Generate()
		result.CapturedAt = frame.CapturedAt
		status = emotion.StatusDegraded
		if p.failures >= p.offlineThreshold {
			status = emotion.StatusOffline
		}
		if p.failures == p.offlineThreshold {
			p.logger.Error("detector offline",
				logging.Int("consecutive_failures", p.failures),
				logging.Error(err))
			p.notifier.DetectorOffline(p.failures)
		} else {
			p.logger.Warn("inference failed, serving synthetic state",
				logging.Int("consecutive_failures", p.failures),
				logging.Error(err))
		}
	} else {
		if p.failures >= p.offlineThreshold {
			p.logger.Info("detector recovered", logging.Int("missed", p.failures))
			p.notifier.DetectorRecovered()
		}
		p.failures = 0
	}
	p.status = status

	report := quality.Assess(result.Landmarks, quality.FrameStats{
		Brightness: result.Brightness,
		FaceFound:  result.FaceFound,
	}, p.thresholds)

	var offset time.Duration
	if !p.sessionStart.IsZero() {
		offset = result.CapturedAt.Sub(p.sessionStart)
	}

	p.sequence++
	state := &emotion.SmoothedState{
		Sequence:      p.sequence,
		SessionID:     p.sessionID,
		Status:        status,
		FaceFound:     result.FaceFound,
		CapturedAt:    result.CapturedAt,
		SessionOffset: offset,
		Metrics:       emotion.PipelineMetrics{InferenceTime: result.InferenceTime},
	}

	if result.FaceFound {
		smoothed := p.engine.Observe(result.Probabilities)
		label, confidence := smoothed.Dominant()
		state.Distribution = smoothed
		state.Dominant = label
		state.Confidence = confidence
		if confidence < p.confidenceFloor {
			report = report.Append(quality.WarningLowConfidence)
		}
	} else {
		// Faceless frames never touch the window; the state carries a
		// zeroed distribution and the explicit warning instead.
		state.Dominant = emotion.Neutral
		report = report.Append(quality.WarningNoFace)
	}
	state.Quality = report

	return state
}

// Reset ends the session: the smoothing window, session aggregates, metrics
// and session identity clear in one step. The admission loop keeps running;
// the next accepted frame starts a fresh session.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.engine.Reset()
	p.fallback.Reset()
	if p.aggregates != nil {
		p.aggregates.Reset()
	}
	p.metrics.reset()
	id := p.sessionID
	p.sessionID = ""
	p.sessionStart = time.Time{}
	p.sequence = 0
	p.mu.Unlock()

	p.logger.Info("session state reset", logging.String(logging.FieldSessionID, id))
	if id != "" {
		p.notifier.SessionReset(id)
	}
}

// SetRate changes the admission rate. Takes effect on the next tick; the
// in-flight call, window and aggregates are untouched.
func (p *Pipeline) SetRate(fps int) error {
	if fps < MinRate || fps > MaxRate {
		return fmt.Errorf("%w: %d fps", ErrRateOutOfRange, fps)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.rate = fps
	if p.ticker != nil && p.running {
		p.ticker.Reset(ratePeriod(fps))
	}
	p.logger.Info("admission rate changed", logging.Int("rate_fps", fps))
	return nil
}

// LastState returns the most recently published state, or nil before the
// first frame completes.
func (p *Pipeline) LastState() *emotion.SmoothedState {
	return p.lastState.Load()
}

// Snapshot is a point-in-time view of the pipeline for status surfaces.
// Emotion and Confidence are the smoothing window's current dominant read;
// before any observation they report the neutral default.
type Snapshot struct {
	Running             bool                    `json:"running"`
	SessionID           string                  `json:"session_id"`
	SessionStart        time.Time               `json:"session_start"`
	Status              emotion.Status          `json:"status"`
	Emotion             emotion.Label           `json:"emotion"`
	Confidence          float64                 `json:"confidence"`
	Rate                int                     `json:"rate_fps"`
	WindowFill          int                     `json:"window_fill"`
	WindowSize          int                     `json:"window_size"`
	FramesAccepted      uint64                  `json:"frames_accepted"`
	FramesDropped       uint64                  `json:"frames_dropped"`
	ConsecutiveFailures int                     `json:"consecutive_failures"`
	Metrics             emotion.PipelineMetrics `json:"metrics"`
}

// Status reports the current pipeline state.
func (p *Pipeline) Status() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	label, confidence := p.engine.Current().Dominant()

	return Snapshot{
		Running:             p.running,
		SessionID:           p.sessionID,
		SessionStart:        p.sessionStart,
		Status:              p.status,
		Emotion:             label,
		Confidence:          confidence,
		Rate:                p.rate,
		WindowFill:          p.engine.Len(),
		WindowSize:          p.engine.Size(),
		FramesAccepted:      p.accepted,
		FramesDropped:       p.dropped,
		ConsecutiveFailures: p.failures,
		Metrics:             p.metrics.snapshot(),
	}
}

func ratePeriod(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}
