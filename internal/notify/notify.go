// Package notify provides OS notification sinks behind one capability
package notify

import (
	"context"
	"log/slog"
)

// Notifier dispatches a user-facing notification. Implementations must
// never panic; failure is the boolean return. Dispatch may block up to the
// context deadline but no longer.
type Notifier interface {
	Notify(ctx context.Context, title, message string) bool
}

// New selects a notifier for mode: "console" forces the console sink,
// anything else picks the platform dialog with a console fallback.
func New(mode string) Notifier {
	if mode == "console" {
		return Console{}
	}
	return newPlatform()
}

// Console prints notifications to the log. Always succeeds.
type Console struct{}

// Notify implements Notifier.
func (Console) Notify(_ context.Context, title, message string) bool {
	slog.Info("notification", "title", title, "message", message)
	return true
}

// Multi fans a notification out to several sinks. It reports success if
// any sink succeeded.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, title, message string) bool {
	ok := false
	for _, n := range m {
		if n.Notify(ctx, title, message) {
			ok = true
		}
	}
	return ok
}
