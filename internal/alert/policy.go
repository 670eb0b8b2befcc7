// Package alert decides when a low blink rate becomes a user-facing alert
package alert

import (
	"sync"
	"time"
)

// Alert policy defaults, matching a healthy resting blink rate.
const (
	DefaultRateThreshold     = 10.0 // blinks per minute
	DefaultCooldown          = 60 * time.Second
	DefaultMinSessionTime    = 30 * time.Second
	DefaultMinBlinksForAlert = 3
)

// Params are the alert tunables. They may be replaced at runtime via
// config live-reload.
type Params struct {
	RateThreshold     float64
	Cooldown          time.Duration
	MinSessionTime    time.Duration
	MinBlinksForAlert int
}

// DefaultParams returns the standard alert tunables.
func DefaultParams() Params {
	return Params{
		RateThreshold:     DefaultRateThreshold,
		Cooldown:          DefaultCooldown,
		MinSessionTime:    DefaultMinSessionTime,
		MinBlinksForAlert: DefaultMinBlinksForAlert,
	}
}

// Policy is the debounced low-rate alerting decision. The zero last-alert
// time means "never alerted", so the first eligible check can always fire.
//
// Policy is safe for concurrent use: the tick loop consults it while the
// config watcher may replace the params.
type Policy struct {
	mu        sync.Mutex
	params    Params
	lastAlert time.Time
}

// New creates a policy that has never alerted.
func New(p Params) *Policy {
	return &Policy{params: p}
}

// Update replaces the tunables. The cooldown clock is not reset.
func (p *Policy) Update(params Params) {
	p.mu.Lock()
	p.params = params
	p.mu.Unlock()
}

// Params returns the current tunables.
func (p *Policy) Params() Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// Eligible evaluates the hard session gates that must hold before the
// policy may even be consulted: calibration complete, minimum session age,
// and a minimum number of blinks in the window. A session with zero blinks
// reads rate 0 but must not alert until enough blinks exist to trust the
// estimate.
func (p *Policy) Eligible(calibrated bool, sessionElapsed time.Duration, windowBlinks int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return calibrated &&
		sessionElapsed >= p.params.MinSessionTime &&
		windowBlinks >= p.params.MinBlinksForAlert
}

// LowRate reports whether rate is below the alert threshold.
func (p *Policy) LowRate(rate float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return rate < p.params.RateThreshold
}

// MaybeAlert reports whether an alert fires now: the rate is below the
// threshold and the cooldown since the last alert has elapsed. When it
// fires, the last-alert time advances immediately, before dispatch, so a
// failed notification cannot cause alert-storming on the next tick.
func (p *Policy) MaybeAlert(rate float64, now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rate >= p.params.RateThreshold {
		return false
	}
	if !p.lastAlert.IsZero() && now.Sub(p.lastAlert) <= p.params.Cooldown {
		return false
	}
	p.lastAlert = now
	return true
}

// LastAlert returns the last fire time, zero if the policy never fired.
func (p *Policy) LastAlert() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastAlert
}
