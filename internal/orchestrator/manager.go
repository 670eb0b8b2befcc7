// Package orchestrator drives the frame-synchronous detection pipeline
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blinkwatch/blinkwatch/internal/alert"
	"github.com/blinkwatch/blinkwatch/internal/blink"
	"github.com/blinkwatch/blinkwatch/internal/capture"
	"github.com/blinkwatch/blinkwatch/internal/geometry"
	"github.com/blinkwatch/blinkwatch/internal/notify"
	"github.com/blinkwatch/blinkwatch/internal/resilience"
	"github.com/blinkwatch/blinkwatch/internal/syncx"
	"github.com/blinkwatch/blinkwatch/internal/trace"
)

const (
	eventBuffer   = 100
	notifyTimeout = 10 * time.Second
	alertTitle    = "Blink Rate Alert"
)

// Overlay carries the 12 eye-contour points for the rendering collaborator.
type Overlay struct {
	Left  [geometry.EyePoints]geometry.Point `json:"left"`
	Right [geometry.EyePoints]geometry.Point `json:"right"`
}

// StatusEvent is published once per processed tick.
type StatusEvent struct {
	Status  blink.Status `json:"status"`
	Overlay Overlay      `json:"overlay"`
}

// BlinkEvent is published when a blink is confirmed.
type BlinkEvent struct {
	Total        int       `json:"total"`
	Rate         float64   `json:"rate"`
	ClosedFrames int       `json:"closed_frames"`
	At           time.Time `json:"at"`
}

// AlertEvent is published when the alert policy fires.
type AlertEvent struct {
	Rate      float64   `json:"rate"`
	Message   string    `json:"message"`
	Delivered bool      `json:"delivered"`
	At        time.Time `json:"at"`
}

// Manager owns the tick loop: it consumes frames from the capture source,
// runs the session pipeline to completion for each one, applies the alert
// gates and policy, and publishes status/blink/alert events for the server.
// Exactly one tick is in flight at a time.
type Manager struct {
	source   capture.Source
	session  *blink.Session
	policy   *alert.Policy
	notifier notify.Notifier
	breaker  *resilience.Breaker
	clock    func() time.Time

	statusCh chan StatusEvent
	blinkCh  chan BlinkEvent
	alertCh  chan AlertEvent

	status  *syncx.Guard[StatusEvent]
	summary *syncx.Guard[blink.Summary]

	// In-flight notification dispatches; waited on (bounded by the
	// notify timeout) before the event channels close.
	dispatches sync.WaitGroup
}

// New creates a manager. A nil clock means time.Now.
func New(det blink.Config, params alert.Params, source capture.Source, notifier notify.Notifier, clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		source:   source,
		session:  blink.NewSession(det, clock),
		policy:   alert.New(params),
		notifier: notifier,
		breaker:  resilience.NewBreaker(resilience.BreakerConfig{}),
		clock:    clock,
		statusCh: make(chan StatusEvent, eventBuffer),
		blinkCh:  make(chan BlinkEvent, eventBuffer),
		alertCh:  make(chan AlertEvent, eventBuffer),
		status:   syncx.NewGuard(StatusEvent{}),
		summary:  syncx.NewGuard(blink.Summary{}),
	}
}

// Run consumes the frame stream until it ends or ctx is cancelled, then
// flushes the final summary. The event channels are closed on return.
func (m *Manager) Run(ctx context.Context) error {
	log := trace.Logger(ctx)
	log.Info("session started",
		"start", m.session.Start(),
		"rate_threshold", m.policy.Params().RateThreshold)

	defer func() {
		m.flushSummary(ctx)
		m.dispatches.Wait()
		close(m.statusCh)
		close(m.blinkCh)
		close(m.alertCh)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-m.source.Frames():
			if !ok {
				return nil
			}
			m.tick(ctx, frame)
		}
	}
}

// tick processes one frame to completion.
func (m *Manager) tick(ctx context.Context, frame capture.Frame) {
	log := trace.Logger(ctx)

	// No landmarks this frame: the whole pipeline is skipped, state
	// untouched, rendering proceeds with a bare frame.
	if frame.NoFace {
		log.Debug("no face detected, skipping tick")
		return
	}

	st, evt, err := m.session.Tick(frame.Left, frame.Right)
	if err != nil {
		log.Debug("skipping tick", "error", err)
		return
	}

	if evt != nil {
		log.Info("blink confirmed",
			"total", st.TotalBlinks,
			"rate", st.CurrentRate,
			"closed_frames", evt.ClosedFrames)
		emit(m.blinkCh, BlinkEvent{
			Total:        st.TotalBlinks,
			Rate:         st.CurrentRate,
			ClosedFrames: evt.ClosedFrames,
			At:           evt.At,
		})
	}

	now := m.clock()
	elapsed := time.Duration(st.SessionSeconds * float64(time.Second))
	eligible := m.policy.Eligible(!st.Calibrating, elapsed, st.WindowBlinks)
	st.LowRate = eligible && m.policy.LowRate(st.CurrentRate)

	if eligible && m.policy.MaybeAlert(st.CurrentRate, now) {
		m.dispatchAlert(ctx, st.CurrentRate, now)
	}

	event := StatusEvent{
		Status:  st,
		Overlay: Overlay{Left: frame.Left, Right: frame.Right},
	}
	m.status.Set(event)
	m.summary.Set(m.session.Summary(m.policy.Params().RateThreshold))
	emit(m.statusCh, event)
}

// dispatchAlert sends the notification without blocking the tick loop.
// The cooldown clock already advanced, so a failed or slow dispatch cannot
// cause alert-storming.
func (m *Manager) dispatchAlert(ctx context.Context, rate float64, at time.Time) {
	msg := formatAlert(rate)

	m.dispatches.Add(1)
	go func() {
		defer m.dispatches.Done()
		ctx, span := trace.StartSpan(ctx, "dispatch_alert")
		defer span.End()
		span.SetAttr("rate", rate)

		log := trace.Logger(ctx)
		delivered := false

		if err := m.breaker.Allow(); err != nil {
			log.Warn("notification suppressed", "error", err, "rate", rate)
		} else {
			nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			delivered = m.notifier.Notify(nctx, alertTitle, msg)
			cancel()

			if delivered {
				m.breaker.Success()
				log.Warn("low blink rate alert", "rate", rate, "delivered", true)
			} else {
				m.breaker.Failure()
				log.Warn("low blink rate alert, notification failed", "rate", rate)
			}
		}

		emit(m.alertCh, AlertEvent{Rate: rate, Message: msg, Delivered: delivered, At: at})
	}()
}

func (m *Manager) flushSummary(ctx context.Context) {
	sum := m.session.Summary(m.policy.Params().RateThreshold)
	m.summary.Set(sum)

	log := trace.Logger(ctx)
	log.Info("session complete",
		"total_blinks", sum.TotalBlinks,
		"final_rate", sum.FinalRate,
		"session_seconds", sum.SessionSeconds)
	if sum.Baseline > 0 {
		log.Info("calibration result", "baseline", sum.Baseline, "threshold", sum.Threshold)
	}
	if sum.BelowThreshold {
		log.Warn("final rate below threshold, consider more frequent breaks",
			"final_rate", sum.FinalRate)
	}
}

// StatusEvents returns the per-tick status stream.
func (m *Manager) StatusEvents() <-chan StatusEvent { return m.statusCh }

// BlinkEvents returns the confirmed-blink stream.
func (m *Manager) BlinkEvents() <-chan BlinkEvent { return m.blinkCh }

// AlertEvents returns the fired-alert stream.
func (m *Manager) AlertEvents() <-chan AlertEvent { return m.alertCh }

// LatestStatus returns the most recent status snapshot.
func (m *Manager) LatestStatus() StatusEvent { return m.status.Get() }

// Summary returns the running session summary.
func (m *Manager) Summary() blink.Summary { return m.summary.Get() }

// ApplyAlertParams replaces the alert tunables, for config live-reload.
func (m *Manager) ApplyAlertParams(p alert.Params) {
	m.policy.Update(p)
	slog.Info("alert tunables updated",
		"rate_threshold", p.RateThreshold,
		"cooldown", p.Cooldown,
		"min_session_time", p.MinSessionTime,
		"min_blinks", p.MinBlinksForAlert)
}

// emit delivers without blocking the tick loop; a full channel drops the
// event for slow consumers.
func emit[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func formatAlert(rate float64) string {
	return fmt.Sprintf("Low blink rate: %.1f/min. Take a break and blink more!", rate)
}
