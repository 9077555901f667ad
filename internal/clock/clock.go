package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Since returns the time elapsed since t according to NowFunc.
func Since(t time.Time) time.Duration { return NowFunc().Sub(t) }

// Passed reports whether the deadline has been reached. A zero deadline never passes.
func Passed(deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	return !NowFunc().Before(deadline)
}
