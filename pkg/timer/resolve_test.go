package timer

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDuration(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		spec     string
		minutes  int64
		degraded bool
	}{
		{"00", 0, false},
		{"05", 5, false},
		{"90", 90, false},
		{"1440", 1440, false},
		{" 7", 7, false},
		{"+3", 3, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-5", 0, true},
		{"-0", 0, false},
		{"5abc", 5, true},
		{"3.7", 3, true},
		{"0x10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			res := ResolveDetailed(tt.spec, now)

			assert.Equal(t, KindDuration, res.Value.Kind)
			assert.Equal(t, now.Add(time.Duration(tt.minutes)*time.Minute), res.Value.Target)
			assert.Equal(t, now, res.Value.CreatedAt)
			assert.Equal(t, tt.degraded, res.IsDegraded())
		})
	}
}

func TestResolveDurationNeverBeforeNow(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

	for _, spec := range []string{"-1", "-999", "garbage", ""} {
		r := Resolve(spec, now)
		assert.Equal(t, now, r.Target, "spec %q", spec)
	}
}

func TestResolveDurationHugeValue(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

	res := ResolveDetailed("99999999999999999999", now)

	require.True(t, res.IsDegraded())
	assert.ErrorIs(t, res.Cause, ErrOutOfRange)
	assert.True(t, res.Value.Target.After(now))
}

func TestResolveClockTimeLaterToday(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)

	res := ResolveDetailed("23:59", now)

	require.False(t, res.IsDegraded())
	assert.Equal(t, KindClockTime, res.Value.Kind)
	assert.Equal(t, 59*time.Minute, res.Value.Target.Sub(now))
}

func TestResolveClockTimeAlreadyPassed(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 59, 30, 0, time.UTC)

	r := Resolve("23:59", now)

	assert.Equal(t, time.Date(2026, 10, 20, 23, 59, 0, 0, time.UTC), r.Target)
	assert.Equal(t, 24*time.Hour-30*time.Second, r.Target.Sub(now))
}

func TestResolveClockTimeExactlyNow(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)

	// Equal is not strictly before, so the target stays today.
	r := Resolve("12:30", now)

	assert.Equal(t, now, r.Target)
}

func TestResolveClockTimePassedIsOneCalendarDayLater(t *testing.T) {
	now := time.Date(2026, 10, 19, 18, 45, 10, 0, time.UTC)

	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 15, 44} {
			today := time.Date(2026, 10, 19, h, m, 0, 0, time.UTC)
			if !today.Before(now) {
				continue
			}
			spec := FormatTime(int64(h*60 + m))
			r := Resolve(spec, now)
			assert.Equal(t, today.AddDate(0, 0, 1), r.Target, "spec %s", spec)
		}
	}
}

func TestResolveClockTimeAcrossDST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks jump from 02:00 to 03:00 on 2026-03-29.
	now := time.Date(2026, 3, 28, 23, 0, 0, 0, berlin)

	r := Resolve("22:30", now)

	assert.Equal(t, 29, r.Target.Day())
	assert.Equal(t, 22, r.Target.Hour())
	assert.Equal(t, 30, r.Target.Minute())

	todayAt := time.Date(2026, 3, 28, 22, 30, 0, 0, berlin)
	assert.Equal(t, 23*time.Hour, r.Target.Sub(todayAt))
}

func TestResolveClockTimeMalformed(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		spec     string
		want     time.Time
		degraded bool
	}{
		{"ab:30", time.Date(2026, 10, 20, 0, 30, 0, 0, time.UTC), true},
		{"12:xy", time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC), true},
		{":", time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), false},
		{"11:", time.Date(2026, 10, 19, 11, 0, 0, 0, time.UTC), false},
		{"25:00", time.Date(2026, 10, 20, 1, 0, 0, 0, time.UTC), false},
		{"10:75", time.Date(2026, 10, 19, 11, 15, 0, 0, time.UTC), false},
		{"11:30:45", time.Date(2026, 10, 19, 11, 30, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			res := ResolveDetailed(tt.spec, now)

			assert.Equal(t, KindClockTime, res.Value.Kind)
			assert.Equal(t, tt.want, res.Value.Target)
			assert.Equal(t, tt.degraded, res.IsDegraded())
			assert.False(t, res.Value.Target.Before(now))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "minutes", KindDuration.String())
	assert.Equal(t, "endTime", KindClockTime.String())
	assert.Equal(t, "unknown", Kind(0).String())
}
