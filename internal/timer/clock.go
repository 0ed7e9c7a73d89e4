// Package timer implements the rest countdown between sets and the elapsed
// session clock. The rest timer is backed by a persisted row so the
// countdown survives reloads and is shared across tabs; remaining time is
// always recomputed from the row's start instant, never by counting ticks.
package timer

import (
	"context"
	"fmt"
	"time"
)

// FormatSeconds renders a countdown as "M:SS", minutes unpadded.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Elapsed renders the time since start as "HH:MM:SS".
func Elapsed(start, now time.Time) string {
	d := now.Sub(start)
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// SessionClock derives a live elapsed-time display from a session's start
// instant. It holds no persistent state; a nil start stops the display.
type SessionClock struct {
	now   func() time.Time
	start *time.Time
}

// NewSessionClock creates a clock reading the current time from now.
func NewSessionClock(now func() time.Time) *SessionClock {
	if now == nil {
		now = time.Now
	}
	return &SessionClock{now: now}
}

// SetStart points the clock at a session start instant; nil clears it.
func (c *SessionClock) SetStart(start *time.Time) {
	c.start = start
}

// Display returns the current "HH:MM:SS" elapsed string, or "00:00:00"
// when no session is running.
func (c *SessionClock) Display() string {
	if c.start == nil {
		return "00:00:00"
	}
	return Elapsed(*c.start, c.now())
}

// Run emits the display once per second until the context is cancelled or
// the start instant is cleared. The interval is injectable for tests.
func (c *SessionClock) Run(ctx context.Context, interval time.Duration, emit func(string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.start == nil {
				return
			}
			emit(c.Display())
		}
	}
}
