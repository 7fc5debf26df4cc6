// Package timer is the measurement protocol around a compiled unit: single
// trials with the collector paused, powers-of-ten autoscaling of the loop
// count, and repeated independent trials for min-reduction by the caller.
//
// Everything here is synchronous and single-threaded. The collector toggle
// is process-wide state, so two Timers must never run trials concurrently.
package timer

import (
	"github.com/rubiojr/timeit/clock"
	"github.com/rubiojr/timeit/snippet"
)

const (
	// DefaultNumber is the per-trial loop count when the caller fixes one.
	DefaultNumber = 1000000
	// DefaultRepeat is the trial count for Repeat.
	DefaultRepeat = 3

	// Autoscaling accepts the first loop count whose elapsed time reaches
	// this floor, which comfortably dominates clock-read and scheduler
	// noise on current hardware.
	autorangeFloor    = 0.2
	autorangeMaxPower = 9
)

// Timer runs trials of one compiled unit. Build it once and reuse it;
// repeated calls only read the unit and the injected clock.
type Timer struct {
	unit  *snippet.CompiledUnit
	clock clock.Source
	gc    GCControl
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock injects the trial clock. Default is clock.Monotonic().
func WithClock(c clock.Source) Option {
	return func(t *Timer) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithGC injects the collector toggle. Default drives the real runtime.
func WithGC(gc GCControl) Option {
	return func(t *Timer) {
		if gc != nil {
			t.gc = gc
		}
	}
}

// New validates and compiles the actions and returns a Timer for them.
// Validation happens here, once; a bad snippet never reaches a trial.
func New(setup, stmt snippet.Action, opts ...Option) (*Timer, error) {
	unit, err := snippet.Build(setup, stmt)
	if err != nil {
		return nil, err
	}
	t := &Timer{
		unit:  unit,
		clock: clock.Monotonic(),
		gc:    NewRuntimeGC(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Timeit runs one trial: setup once, then the statement number times, and
// returns the elapsed seconds for the loop alone. Automatic collection is
// paused for the duration and restored on every exit path, so a collector
// pause can never land inside the measured window. Errors from the unit
// propagate verbatim.
func (t *Timer) Timeit(number int) (float64, error) {
	gcold := t.gc.Enabled()
	t.gc.SetEnabled(false)
	defer func() {
		if gcold {
			t.gc.SetEnabled(true)
		}
	}()
	return t.unit.Run(number, t.clock)
}

// Repeat runs repeat independent trials at a fixed loop count and returns
// the elapsed times in trial order. A trial error aborts the sequence; the
// returned error is a *TrialError carrying the completed prefix, and no
// series is returned on the default path.
//
// The minimum of the series divided by number is the usual estimate of
// per-iteration cost: noise only ever inflates a trial, never deflates it.
func (t *Timer) Repeat(repeat, number int) ([]float64, error) {
	if repeat < 1 {
		repeat = 1
	}
	series := make([]float64, 0, repeat)
	for i := 0; i < repeat; i++ {
		elapsed, err := t.Timeit(number)
		if err != nil {
			return nil, &TrialError{Trial: i, Completed: series, Err: err}
		}
		series = append(series, elapsed)
	}
	return series, nil
}

// Autorange finds a loop count big enough for a meaningful reading. It
// tries 10, 100, ... up to 10^9 and accepts the first count whose elapsed
// time reaches 0.2 seconds. If even 10^9 iterations stay under the floor,
// the last attempt is accepted as a usable best-effort result rather than
// an error. A trial error aborts the search immediately.
//
// The callback, if non-nil, observes every attempt in order.
func (t *Timer) Autorange(callback func(number int, elapsed float64)) (int, float64, error) {
	return autorange(t.Timeit, callback)
}

func autorange(trial func(int) (float64, error), callback func(int, float64)) (int, float64, error) {
	number := 1
	var elapsed float64
	for i := 1; i <= autorangeMaxPower; i++ {
		number *= 10
		var err error
		elapsed, err = trial(number)
		if err != nil {
			return 0, 0, err
		}
		if callback != nil {
			callback(number, elapsed)
		}
		if elapsed >= autorangeFloor {
			break
		}
	}
	return number, elapsed, nil
}

// Source returns the synthesized source text of the underlying unit, empty
// when both actions were callables.
func (t *Timer) Source() string { return t.unit.Source() }

// SourceName returns the virtual filename of the synthesized source.
func (t *Timer) SourceName() string { return t.unit.SourceName() }

// Timeit is the one-shot convenience: build a Timer for the actions and
// run a single trial of number iterations.
func Timeit(setup, stmt snippet.Action, number int, opts ...Option) (float64, error) {
	t, err := New(setup, stmt, opts...)
	if err != nil {
		return 0, err
	}
	return t.Timeit(number)
}

// Repeat is the one-shot convenience for Timer.Repeat.
func Repeat(setup, stmt snippet.Action, repeat, number int, opts ...Option) ([]float64, error) {
	t, err := New(setup, stmt, opts...)
	if err != nil {
		return nil, err
	}
	return t.Repeat(repeat, number)
}
