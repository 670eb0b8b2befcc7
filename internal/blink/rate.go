package blink

import "time"

// Window holds the timestamps of recent blinks and computes the
// blinks-per-minute rate over a bounded trailing span. Entries are appended
// at the back and pruned only from the front.
type Window struct {
	span   time.Duration
	start  time.Time
	stamps []time.Time
}

// NewWindow creates a window of the given span for a session that began at
// start.
func NewWindow(span time.Duration, start time.Time) *Window {
	if span <= 0 {
		span = DefaultRateWindow
	}
	return &Window{span: span, start: start}
}

// Record appends a blink timestamp and prunes entries that fell out of the
// trailing span.
func (w *Window) Record(t time.Time) {
	w.stamps = append(w.stamps, t)
	w.Prune(t)
}

// Prune drops timestamps older than now minus the window span. Pruning is
// idempotent for a fixed now.
func (w *Window) Prune(now time.Time) {
	cutoff := now.Add(-w.span)
	kept := w.stamps[:0]
	for _, t := range w.stamps {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	w.stamps = kept
}

// Count returns the number of blinks inside the trailing span.
func (w *Window) Count(now time.Time) int {
	w.Prune(now)
	return len(w.stamps)
}

// Rate returns blinks per minute at now.
//
// The divisor is the actual elapsed session time capped at the window span,
// never the nominal span: a session 10 seconds old with 2 blinks reads
// 12/min, not 2 divided by the full window. Elapsed time is floored at one
// second so an instant-old session cannot divide by ~zero.
func (w *Window) Rate(now time.Time) float64 {
	w.Prune(now)
	if len(w.stamps) == 0 {
		return 0
	}

	elapsed := now.Sub(w.start)
	if elapsed > w.span {
		elapsed = w.span
	}
	if elapsed < minRateElapsed {
		elapsed = minRateElapsed
	}
	return float64(len(w.stamps)) / elapsed.Minutes()
}

// Span returns the nominal window span.
func (w *Window) Span() time.Duration { return w.span }
