package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker(BreakerConfig{Threshold: 3, ResetAfter: time.Hour})

	for i := 0; i < 2; i++ {
		b.Failure()
		if err := b.Allow(); err != nil {
			t.Fatalf("breaker opened after %d failures, threshold is 3", i+1)
		}
	}

	b.Failure()
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("Allow = %v, want ErrBreakerOpen", err)
	}
	if b.State() != BreakerOpen {
		t.Errorf("state = %s, want open", b.State())
	}
}

func TestBreakerSuccessResets(t *testing.T) {
	b := NewBreaker(BreakerConfig{Threshold: 3, ResetAfter: time.Hour})
	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()

	if err := b.Allow(); err != nil {
		t.Error("success should have reset the consecutive failure count")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(BreakerConfig{Threshold: 1, ResetAfter: time.Millisecond})
	b.Failure()
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Fatal("breaker should be open")
	}

	time.Sleep(5 * time.Millisecond)

	// After the reset window a probe is allowed.
	if err := b.Allow(); err != nil {
		t.Fatalf("probe should be allowed after reset window, got %v", err)
	}
	if b.State() != BreakerHalfOpen {
		t.Fatalf("state = %s, want half-open", b.State())
	}

	// A failed probe reopens immediately.
	b.Failure()
	if err := b.Allow(); !errors.Is(err, ErrBreakerOpen) {
		t.Error("failed probe should reopen the breaker")
	}

	time.Sleep(5 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatal("second probe should be allowed")
	}
	b.Success()
	if b.State() != BreakerClosed {
		t.Errorf("state after successful probe = %s, want closed", b.State())
	}
}
