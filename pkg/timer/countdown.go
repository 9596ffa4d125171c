package timer

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultInterval is the display update period.
const DefaultInterval = time.Second

// EndedText is shown once the countdown has reached zero.
const EndedText = "00:00"

// Remaining returns the whole seconds left until target, never negative.
func Remaining(target, now time.Time) int64 {
	d := target.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// FormatTime renders seconds as MM:SS. Minutes are not wrapped into hours,
// so 3661 seconds is "61:01".
func FormatTime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Display is what a single tick renders.
type Display struct {
	// Text is the MM:SS countdown text.
	Text string `json:"text"`

	// Remaining is the whole number of seconds left.
	Remaining int64 `json:"remaining"`

	// Ended is true once the countdown has reached zero. It never reverts.
	Ended bool `json:"ended"`
}

// Countdown tracks a resolved timer across ticks.
type Countdown struct {
	mu       sync.Mutex
	resolved Resolved
	ended    bool
}

// NewCountdown creates a countdown for a resolved timer.
func NewCountdown(r Resolved) *Countdown {
	return &Countdown{resolved: r}
}

// Resolved returns the timer the countdown was created from.
func (c *Countdown) Resolved() Resolved {
	return c.resolved
}

// Ended reports whether the countdown has latched at zero.
func (c *Countdown) Ended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ended
}

// Tick computes the display for the given instant.
func (c *Countdown) Tick(now time.Time) Display {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ended && Remaining(c.resolved.Target, now) == 0 {
		c.ended = true
	}
	if c.ended {
		return Display{Text: EndedText, Remaining: 0, Ended: true}
	}

	remaining := Remaining(c.resolved.Target, now)
	return Display{Text: FormatTime(remaining), Remaining: remaining}
}

// Run renders the countdown immediately and then once per interval until ctx
// is cancelled. Renders happen on the calling goroutine and never overlap.
// A nil clock means time.Now.
func Run(ctx context.Context, c *Countdown, interval time.Duration, clock func() time.Time, render func(Display)) {
	if clock == nil {
		clock = time.Now
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	render(c.Tick(clock()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			render(c.Tick(clock()))
		}
	}
}
