package blink

import (
	"math"
	"testing"
	"time"
)

func TestWindowWarmupRate(t *testing.T) {
	// Session 10s old, 240s window, 2 blinks: rate must divide by the
	// actual 10s of elapsed time, not the nominal window.
	now := time.Unix(1000, 0)
	w := NewWindow(240*time.Second, now.Add(-10*time.Second))
	w.Record(now.Add(-8 * time.Second))
	w.Record(now.Add(-2 * time.Second))

	got := w.Rate(now)
	if math.Abs(got-12.0) > 1e-9 {
		t.Errorf("warm-up rate = %f, want 12.0", got)
	}
}

func TestWindowSteadyStateRate(t *testing.T) {
	// Session older than the window: divide by the full window span.
	start := time.Unix(1000, 0)
	now := start.Add(10 * time.Minute)
	w := NewWindow(4*time.Minute, start)
	for i := 0; i < 8; i++ {
		w.Record(now.Add(-time.Duration(i*20) * time.Second))
	}

	got := w.Rate(now)
	if math.Abs(got-2.0) > 1e-9 {
		t.Errorf("steady-state rate = %f, want 8 blinks / 4 min = 2.0", got)
	}
}

func TestWindowEmptyRateIsZero(t *testing.T) {
	now := time.Unix(1000, 0)
	w := NewWindow(4*time.Minute, now)
	if got := w.Rate(now); got != 0 {
		t.Errorf("empty window rate = %f, want 0", got)
	}
}

func TestWindowInstantSessionFloor(t *testing.T) {
	// A blink recorded at session start must divide by at least 1 second.
	now := time.Unix(1000, 0)
	w := NewWindow(4*time.Minute, now)
	w.Record(now)

	got := w.Rate(now)
	if math.Abs(got-60.0) > 1e-9 {
		t.Errorf("instant-session rate = %f, want 1 blink / 1s floor = 60.0", got)
	}
}

func TestWindowPruneDropsOldEntries(t *testing.T) {
	start := time.Unix(1000, 0)
	w := NewWindow(time.Minute, start)
	w.Record(start.Add(10 * time.Second))
	w.Record(start.Add(30 * time.Second))
	w.Record(start.Add(80 * time.Second))

	now := start.Add(90 * time.Second)
	if got := w.Count(now); got != 2 {
		t.Errorf("count after prune = %d, want 2", got)
	}
}

func TestWindowPruneIdempotent(t *testing.T) {
	start := time.Unix(1000, 0)
	w := NewWindow(time.Minute, start)
	for i := 0; i < 10; i++ {
		w.Record(start.Add(time.Duration(i*12) * time.Second))
	}

	now := start.Add(2 * time.Minute)
	w.Prune(now)
	first := append([]time.Time(nil), w.stamps...)
	w.Prune(now)

	if len(w.stamps) != len(first) {
		t.Fatalf("second prune changed window size: %d != %d", len(w.stamps), len(first))
	}
	for i := range first {
		if !w.stamps[i].Equal(first[i]) {
			t.Errorf("entry %d changed after second prune", i)
		}
	}
}
