package blink

import (
	"time"

	"github.com/blinkwatch/blinkwatch/internal/geometry"
)

// Config holds the per-session detection parameters. These are fixed at
// session start; changing them mid-calibration would invalidate the frozen
// baseline.
type Config struct {
	BaselineFrames int
	ThresholdRatio float64
	MinBlinkFrames int
	RateWindow     time.Duration
}

// DefaultConfig returns the standard detection parameters.
func DefaultConfig() Config {
	return Config{
		BaselineFrames: DefaultBaselineFrames,
		ThresholdRatio: DefaultThresholdRatio,
		MinBlinkFrames: DefaultMinBlinkFrames,
		RateWindow:     DefaultRateWindow,
	}
}

// Status is the per-tick payload for the rendering collaborator.
type Status struct {
	LeftEAR           float64 `json:"left_ear"`
	RightEAR          float64 `json:"right_ear"`
	Calibrating       bool    `json:"calibrating"`
	CalibrationFrames int     `json:"calibration_frames"`
	CalibrationTarget int     `json:"calibration_target"`
	AdaptiveThreshold float64 `json:"adaptive_threshold,omitempty"`
	TotalBlinks       int     `json:"total_blinks"`
	WindowBlinks      int     `json:"window_blinks"`
	CurrentRate       float64 `json:"current_rate"`
	SessionSeconds    float64 `json:"session_seconds"`
	WindowSeconds     float64 `json:"window_seconds"`
	LowRate           bool    `json:"low_rate"`
}

// Summary is the final record emitted when the frame stream ends.
type Summary struct {
	TotalBlinks    int     `json:"total_blinks"`
	FinalRate      float64 `json:"final_rate"`
	Baseline       float64 `json:"baseline,omitempty"`
	Threshold      float64 `json:"threshold,omitempty"`
	SessionSeconds float64 `json:"session_seconds"`
	BelowThreshold bool    `json:"below_threshold"`
}

// Session owns all state for one live detection session: baseline buffer,
// detector state machine, rolling rate window and counters. It is
// single-owner: exactly one tick is processed at a time and nothing here is
// safe for concurrent use.
type Session struct {
	cfg      Config
	clock    func() time.Time
	start    time.Time
	baseline *Baseline
	detector *Detector
	window   *Window
	total    int
}

// NewSession creates a session starting now. A nil clock means time.Now;
// tests inject a fake.
func NewSession(cfg Config, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	start := clock()
	return &Session{
		cfg:      cfg,
		clock:    clock,
		start:    start,
		baseline: NewBaseline(cfg.BaselineFrames),
		detector: NewDetector(cfg.ThresholdRatio, cfg.MinBlinkFrames),
		window:   NewWindow(cfg.RateWindow, start),
	}
}

// Tick processes one frame of eye landmarks to completion: openness metric,
// baseline or detection, then the rate estimate. It returns the status
// payload and, when a blink was confirmed this frame, the event.
//
// A degenerate eye span returns geometry.ErrDegenerateSpan with no state
// mutated; the caller skips detection for the tick and keeps looping.
func (s *Session) Tick(left, right [geometry.EyePoints]geometry.Point) (Status, *Event, error) {
	now := s.clock()

	leftEAR, err := geometry.EAR(left)
	if err != nil {
		return Status{}, nil, err
	}
	rightEAR, err := geometry.EAR(right)
	if err != nil {
		return Status{}, nil, err
	}

	var evt *Event
	if !s.baseline.Calibrated() {
		s.baseline.Observe((leftEAR + rightEAR) / 2)
		if s.baseline.Calibrated() {
			s.detector.Calibrate()
		}
	} else if e, ok := s.detector.Observe(leftEAR, rightEAR, s.baseline.Value(), now); ok {
		s.total++
		s.window.Record(e.At)
		evt = &e
	}

	return s.status(leftEAR, rightEAR, now), evt, nil
}

func (s *Session) status(leftEAR, rightEAR float64, now time.Time) Status {
	collected, target := s.baseline.Progress()
	elapsed := now.Sub(s.start)
	windowDur := elapsed
	if windowDur > s.cfg.RateWindow {
		windowDur = s.cfg.RateWindow
	}

	st := Status{
		LeftEAR:           leftEAR,
		RightEAR:          rightEAR,
		Calibrating:       !s.baseline.Calibrated(),
		CalibrationFrames: collected,
		CalibrationTarget: target,
		TotalBlinks:       s.total,
		WindowBlinks:      s.window.Count(now),
		CurrentRate:       s.window.Rate(now),
		SessionSeconds:    elapsed.Seconds(),
		WindowSeconds:     windowDur.Seconds(),
	}
	if !st.Calibrating {
		st.AdaptiveThreshold = s.detector.Threshold(s.baseline.Value())
	}
	return st
}

// Summary builds the end-of-session record. lowRateThreshold is the alert
// policy's minimum healthy rate, used for the below-threshold flag.
func (s *Session) Summary(lowRateThreshold float64) Summary {
	now := s.clock()
	rate := s.window.Rate(now)
	sum := Summary{
		TotalBlinks:    s.total,
		FinalRate:      rate,
		SessionSeconds: now.Sub(s.start).Seconds(),
		BelowThreshold: rate < lowRateThreshold,
	}
	if s.baseline.Calibrated() {
		sum.Baseline = s.baseline.Value()
		sum.Threshold = s.detector.Threshold(s.baseline.Value())
	}
	return sum
}

// Calibrated reports whether the baseline has frozen.
func (s *Session) Calibrated() bool { return s.baseline.Calibrated() }

// TotalBlinks returns the number of blinks confirmed this session.
func (s *Session) TotalBlinks() int { return s.total }

// Start returns the session start instant.
func (s *Session) Start() time.Time { return s.start }
