//go:build darwin

package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// dialogGiveUpSeconds auto-dismisses the dialog so an unattended machine
// does not pile up windows.
const dialogGiveUpSeconds = 8

// Dialog shows a macOS system dialog via osascript. Dialogs are harder to
// miss than notification-center banners.
type Dialog struct{}

func newPlatform() Notifier {
	return Dialog{}
}

// Notify implements Notifier.
func (Dialog) Notify(ctx context.Context, title, message string) bool {
	script := fmt.Sprintf(
		`display dialog %q with title %q buttons {"OK"} default button "OK" with icon caution giving up after %d`,
		sanitize(message), sanitize(title), dialogGiveUpSeconds,
	)

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		slog.Warn("osascript dialog failed", "error", err, "stderr", stderr.String())
		return false
	}
	return true
}

// sanitize strips quotes that would break out of the AppleScript literal.
func sanitize(s string) string {
	return strings.NewReplacer(`"`, "'", "\\", "").Replace(s)
}
