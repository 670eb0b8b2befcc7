package blink

import "time"

// Phase is the detector state.
type Phase uint8

const (
	// PhaseCalibrating means the baseline has not frozen yet; no events
	// are ever emitted in this phase.
	PhaseCalibrating Phase = iota
	// PhaseOpen means both eyes read above the adaptive threshold.
	PhaseOpen
	// PhaseClosing means a run of closed frames is being counted.
	PhaseClosing
)

func (p Phase) String() string {
	switch p {
	case PhaseCalibrating:
		return "calibrating"
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Event marks the moment a blink is confirmed complete.
type Event struct {
	At           time.Time
	ClosedFrames int
}

// Detector turns per-frame openness readings into discrete blink events.
// Both eyes must read below the threshold for a frame to count as closed,
// and a closed run must last at least minFrames frames to count as a blink
// rather than detector jitter.
type Detector struct {
	ratio     float64
	minFrames int
	phase     Phase
	closed    int
}

// NewDetector creates a detector in the calibrating phase.
func NewDetector(thresholdRatio float64, minBlinkFrames int) *Detector {
	if thresholdRatio <= 0 {
		thresholdRatio = DefaultThresholdRatio
	}
	if minBlinkFrames < 1 {
		minBlinkFrames = DefaultMinBlinkFrames
	}
	return &Detector{ratio: thresholdRatio, minFrames: minBlinkFrames}
}

// Calibrate moves the detector out of the calibrating phase. Called once,
// when the baseline freezes.
func (d *Detector) Calibrate() {
	if d.phase == PhaseCalibrating {
		d.phase = PhaseOpen
	}
}

// Phase returns the current detector phase.
func (d *Detector) Phase() Phase { return d.phase }

// Threshold returns the adaptive closed-eye threshold for baseline.
func (d *Detector) Threshold(baseline float64) float64 {
	return baseline * d.ratio
}

// Observe processes one calibrated frame. It returns (event, true) exactly
// when an open frame ends a closed run of at least the minimum duration.
// Shorter runs are discarded as noise.
func (d *Detector) Observe(leftEAR, rightEAR, baseline float64, now time.Time) (Event, bool) {
	if d.phase == PhaseCalibrating {
		return Event{}, false
	}

	thr := d.Threshold(baseline)
	if leftEAR < thr && rightEAR < thr {
		d.phase = PhaseClosing
		d.closed++
		return Event{}, false
	}

	run := d.closed
	d.closed = 0
	d.phase = PhaseOpen
	if run >= d.minFrames {
		return Event{At: now, ClosedFrames: run}, true
	}
	return Event{}, false
}
