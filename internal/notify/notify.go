// Package notify sends best-effort desktop notifications.
package notify

import (
	"context"
	"os/exec"
)

// Send raises a desktop notification. The returned error is for debug
// logging only; callers must never treat it as fatal.
func Send(ctx context.Context, title, body string) error {
	return exec.CommandContext(ctx, "notify-send", title, body).Run()
}
