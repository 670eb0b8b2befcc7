package blink

import (
	"testing"
	"time"
)

const (
	testBaseline = 0.30
	openEAR      = 0.30 // above threshold 0.225
	closedEAR    = 0.10 // below threshold
)

func newCalibratedDetector() *Detector {
	d := NewDetector(0.75, 3)
	d.Calibrate()
	return d
}

func observeRun(t *testing.T, d *Detector, closedFrames int) {
	t.Helper()
	for i := 0; i < closedFrames; i++ {
		if _, ok := d.Observe(closedEAR, closedEAR, testBaseline, time.Now()); ok {
			t.Fatal("event emitted mid closed run")
		}
	}
}

func TestDetectorNoEventsWhileCalibrating(t *testing.T) {
	d := NewDetector(0.75, 3)
	for i := 0; i < 10; i++ {
		if _, ok := d.Observe(closedEAR, closedEAR, testBaseline, time.Now()); ok {
			t.Fatal("detector emitted an event while calibrating")
		}
	}
	if d.Phase() != PhaseCalibrating {
		t.Errorf("phase = %s, want calibrating", d.Phase())
	}
}

func TestDetectorMinimumDurationGate(t *testing.T) {
	// MinBlinkFrames−1 closed frames followed by open: noise, zero events.
	d := newCalibratedDetector()
	observeRun(t, d, 2)
	if _, ok := d.Observe(openEAR, openEAR, testBaseline, time.Now()); ok {
		t.Error("2-frame run emitted an event, want none")
	}

	// Exactly MinBlinkFrames closed frames followed by open: one event.
	observeRun(t, d, 3)
	evt, ok := d.Observe(openEAR, openEAR, testBaseline, time.Now())
	if !ok {
		t.Fatal("3-frame run emitted no event, want one")
	}
	if evt.ClosedFrames != 3 {
		t.Errorf("ClosedFrames = %d, want 3", evt.ClosedFrames)
	}
	if d.Phase() != PhaseOpen {
		t.Errorf("phase after blink = %s, want open", d.Phase())
	}
}

func TestDetectorSingleEyeClosedIsNotABlink(t *testing.T) {
	// One eye occluded or at a bad angle must not count as closed.
	d := newCalibratedDetector()
	for i := 0; i < 5; i++ {
		if _, ok := d.Observe(closedEAR, openEAR, testBaseline, time.Now()); ok {
			t.Fatal("single closed eye emitted an event")
		}
	}
	if d.Phase() != PhaseOpen {
		t.Errorf("phase = %s, want open", d.Phase())
	}
}

func TestDetectorPhaseTransitions(t *testing.T) {
	d := newCalibratedDetector()
	if d.Phase() != PhaseOpen {
		t.Fatalf("initial phase = %s, want open", d.Phase())
	}
	d.Observe(closedEAR, closedEAR, testBaseline, time.Now())
	if d.Phase() != PhaseClosing {
		t.Errorf("phase after closed frame = %s, want closing", d.Phase())
	}
	d.Observe(openEAR, openEAR, testBaseline, time.Now())
	if d.Phase() != PhaseOpen {
		t.Errorf("phase after open frame = %s, want open", d.Phase())
	}
}

func TestDetectorLongRunEmitsOneEvent(t *testing.T) {
	d := newCalibratedDetector()
	observeRun(t, d, 12)
	events := 0
	for i := 0; i < 5; i++ {
		if _, ok := d.Observe(openEAR, openEAR, testBaseline, time.Now()); ok {
			events++
		}
	}
	if events != 1 {
		t.Errorf("12-frame run produced %d events, want 1", events)
	}
}

func TestDetectorThreshold(t *testing.T) {
	d := NewDetector(0.75, 3)
	if got := d.Threshold(0.4); got != 0.3 {
		t.Errorf("Threshold(0.4) = %f, want 0.3", got)
	}
}
