package degrade

// Result carries a value that is always usable, plus whether it is a fallback.
type Result[T any] struct {
	// Value is the computed value, or the fallback when Degraded is set.
	Value T

	// Degraded is true when Value was substituted for a failed computation.
	Degraded bool

	// Cause is the underlying failure. It may be nil for a degraded result
	// whose input was merely malformed.
	Cause error
}

// OK wraps a value that was computed normally.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Fallback wraps a substituted value and the failure that led to it.
func Fallback[T any](v T, cause error) Result[T] {
	return Result[T]{Value: v, Degraded: true, Cause: cause}
}

// IsDegraded reports whether the value is a fallback.
func (r Result[T]) IsDegraded() bool {
	return r.Degraded
}

// Unwrap returns the value and the cause, for callers that want error-style handling.
func (r Result[T]) Unwrap() (T, error) {
	return r.Value, r.Cause
}
