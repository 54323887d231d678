package loading

import (
	"context"
	"fmt"
	"io"
	"time"
)

var frames = [...]string{"|", "/", "-", `\`}

// Frame returns the spinner frame for tick.
func Frame(tick int) string {
	if tick < 0 {
		tick = -tick
	}
	return frames[tick%len(frames)]
}

// Spin redraws a spinner line on w every interval while t is pending, then
// clears it. It returns once t is no longer pending or ctx is done.
func Spin[T any](ctx context.Context, w io.Writer, label string, interval time.Duration, t *Tracker[T]) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer fmt.Fprint(w, "\r\033[K")

	for tick := 0; t.State() == Pending; tick++ {
		fmt.Fprintf(w, "\r%s %s", Frame(tick), label)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
