// Package clock provides the time sources injected into the timing
// harness. A Source is a bare reading function rather than an interface:
// the inner measurement loop calls it exactly twice per trial and the
// harness never needs more than "give me a number of seconds".
package clock

import "time"

// Source returns a timestamp in seconds. Successive readings from one
// Source must be non-decreasing; the epoch is arbitrary, only differences
// are meaningful.
type Source func() float64

// Monotonic returns a Source backed by the runtime's monotonic clock.
// This is the default trial clock: immune to wall-clock adjustments.
func Monotonic() Source {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}

// Manual is a hand-advanced clock for deterministic tests.
type Manual struct {
	now float64
}

// NewManual creates a Manual clock starting at the given reading.
func NewManual(start float64) *Manual {
	return &Manual{now: start}
}

// Advance moves the clock forward by d seconds. Negative values are
// ignored so the Source contract holds.
func (m *Manual) Advance(d float64) {
	if d > 0 {
		m.now += d
	}
}

// Source returns the reading function for this clock.
func (m *Manual) Source() Source {
	return func() float64 { return m.now }
}

// Stub returns a Source that yields the given readings in order and then
// keeps repeating the last one. Useful for scripting exact t0/t1 pairs.
func Stub(readings ...float64) Source {
	i := 0
	return func() float64 {
		if len(readings) == 0 {
			return 0
		}
		r := readings[i]
		if i < len(readings)-1 {
			i++
		}
		return r
	}
}
