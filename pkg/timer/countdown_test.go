package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{65, "01:05"},
		{3599, "59:59"},
		{3600, "60:00"},
		{3661, "61:01"},
		{6000, "100:00"},
		{-10, "00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.seconds), "FormatTime(%d)", tt.seconds)
	}
}

func TestRemaining(t *testing.T) {
	target := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(60), Remaining(target, target.Add(-60*time.Second)))
	assert.Equal(t, int64(59), Remaining(target, target.Add(-59500*time.Millisecond)))
	assert.Equal(t, int64(0), Remaining(target, target.Add(-999*time.Millisecond)))
	assert.Equal(t, int64(0), Remaining(target, target))
	assert.Equal(t, int64(0), Remaining(target, target.Add(time.Hour)))
}

func TestCountdownStartsAtFullDuration(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := NewCountdown(Resolve("05", now))

	d := c.Tick(now)
	assert.Equal(t, "05:00", d.Text)
	assert.Equal(t, int64(300), d.Remaining)
	assert.False(t, d.Ended)

	d = c.Tick(now.Add(time.Second))
	assert.Equal(t, "04:59", d.Text)
}

func TestCountdownLatchesAtZero(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := NewCountdown(Resolve("01", now))

	d := c.Tick(now.Add(time.Minute))
	require.True(t, d.Ended)
	assert.Equal(t, EndedText, d.Text)

	for _, later := range []time.Duration{time.Second, time.Hour, 48 * time.Hour} {
		d = c.Tick(now.Add(time.Minute + later))
		assert.True(t, d.Ended)
		assert.Equal(t, "00:00", d.Text)
		assert.Zero(t, d.Remaining)
	}

	// Clock skew backwards does not revive the countdown.
	d = c.Tick(now)
	assert.True(t, d.Ended)
	assert.Equal(t, "00:00", d.Text)
	assert.True(t, c.Ended())
}

func TestCountdownZeroMinutesEndsImmediately(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := NewCountdown(Resolve("", now))

	d := c.Tick(now)
	assert.True(t, d.Ended)
	assert.Equal(t, "00:00", d.Text)
}

func TestRunRendersImmediatelyAndOnEveryTick(t *testing.T) {
	start := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := NewCountdown(Resolve("05", start))

	var mu sync.Mutex
	calls := 0
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return start.Add(time.Duration(calls) * time.Second)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	done := make(chan struct{})

	go func() {
		defer close(done)
		Run(ctx, c, time.Millisecond, clock, func(d Display) {
			mu.Lock()
			calls++
			mu.Unlock()
			got = append(got, d.Text)
			if len(got) == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []string{"05:00", "04:59", "04:58"}, got[:3])
}
