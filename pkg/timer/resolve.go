package timer

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mehmetsinc/timer-takimca/pkg/degrade"
)

// Resolution errors. They are only ever reported as the cause of a degraded
// result, never returned on their own.
var (
	ErrNotNumeric    = errors.New("timer value is not numeric")
	ErrNegative      = errors.New("timer value is negative")
	ErrTrailingInput = errors.New("timer value has trailing characters")
	ErrOutOfRange    = errors.New("timer value out of range")
)

// DefaultSpec is the timer specification used when none is given.
const DefaultSpec = "00"

// maxMinutes keeps now+N minutes representable as a time.Duration.
const maxMinutes = math.MaxInt64 / int64(time.Minute)

// maxClockComponent bounds hour and minute values before normalization.
const maxClockComponent = 1_000_000

// Kind identifies how the target instant was specified.
type Kind uint8

const (
	// KindDuration is a minute count relative to the resolution time.
	KindDuration Kind = iota + 1

	// KindClockTime is a wall-clock end time.
	KindClockTime
)

// String returns the name used in share URLs and API responses.
func (k Kind) String() string {
	switch k {
	case KindDuration:
		return "minutes"
	case KindClockTime:
		return "endTime"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Resolved is a timer specification bound to an absolute target instant.
type Resolved struct {
	// Kind is how the target was specified.
	Kind Kind

	// Target is the instant the countdown reaches zero.
	Target time.Time

	// CreatedAt is the "now" the specification was resolved against.
	CreatedAt time.Time
}

// Resolve converts a timer specification into a target instant.
// It never fails; see ResolveDetailed for the degrade information.
func Resolve(spec string, now time.Time) Resolved {
	return ResolveDetailed(spec, now).Value
}

// ResolveDetailed is Resolve with the degrade information kept.
func ResolveDetailed(spec string, now time.Time) degrade.Result[Resolved] {
	if strings.Contains(spec, ":") {
		return resolveClockTime(spec, now)
	}
	return resolveDuration(spec, now)
}

func resolveDuration(spec string, now time.Time) degrade.Result[Resolved] {
	minutes, err := parseMinutes(spec)
	r := Resolved{
		Kind:      KindDuration,
		Target:    now.Add(time.Duration(minutes) * time.Minute),
		CreatedAt: now,
	}
	if err != nil {
		return degrade.Fallback(r, err)
	}
	return degrade.OK(r)
}

func resolveClockTime(spec string, now time.Time) degrade.Result[Resolved] {
	parts := strings.Split(spec, ":")

	hour, hourErr := parseClockComponent(parts[0])
	minute, minuteErr := parseClockComponent(parts[1])

	y, m, d := now.Date()
	target := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if target.Before(now) {
		target = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}

	r := Resolved{Kind: KindClockTime, Target: target, CreatedAt: now}
	if err := errors.Join(hourErr, minuteErr); err != nil {
		return degrade.Fallback(r, err)
	}
	return degrade.OK(r)
}

// parseMinutes reads a leading base-10 integer the way browsers' parseInt
// does: leading spaces and a sign are allowed, parsing stops at the first
// non-digit. The result is never negative.
func parseMinutes(s string) (int64, error) {
	s = strings.TrimLeft(s, " \t\n\r")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, ErrNotNumeric
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n > maxMinutes {
		n, err = maxMinutes, ErrOutOfRange
	}

	switch {
	case neg && n != 0:
		return 0, ErrNegative
	case err != nil:
		return n, err
	case end < len(s):
		return n, ErrTrailingInput
	}
	return n, nil
}

// parseClockComponent reads an hour or minute value. Blank is zero;
// fractions are truncated; anything non-numeric degrades to zero.
func parseClockComponent(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, ErrNotNumeric
	}
	if math.Abs(f) > maxClockComponent {
		return 0, ErrOutOfRange
	}
	return int(f), nil
}
