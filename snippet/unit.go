package snippet

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/rubiojr/timeit/clock"
)

// CompiledUnit is an executable measurement unit produced by Build.
// Construction is the expensive part (parsing and compiling); a unit is
// immutable afterwards and meant to be reused across many runs. It owns no
// mutable state beyond whatever the actions close over.
//
// A unit must not be run concurrently: the timing layer toggles
// process-wide collector state around each run.
type CompiledUnit struct {
	// Starlark path: the compiled inner function and its source text.
	inner starlark.Value
	src   string

	// Native path: both actions were callables.
	setupFn func() error
	stmtFn  func() error
}

// Run executes setup once, reads the clock, invokes the statement number
// times in a tight loop, reads the clock again, and returns the elapsed
// seconds. Setup time is excluded from the window. Errors from either
// action propagate; no elapsed value is produced for a failed run.
func (u *CompiledUnit) Run(number int, clk clock.Source) (float64, error) {
	if u.inner == nil {
		return u.runNative(number, clk)
	}
	thread := &starlark.Thread{Name: "timeit"}
	timer := starlark.NewBuiltin("_timer", func(_ *starlark.Thread, _ *starlark.Builtin, _ starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
		return starlark.Float(clk()), nil
	})
	v, err := starlark.Call(thread, u.inner, starlark.Tuple{starlark.MakeInt(number), timer}, nil)
	if err != nil {
		return 0, err
	}
	elapsed, ok := starlark.AsFloat(v)
	if !ok {
		return 0, fmt.Errorf("inner loop returned %s, want float", v.Type())
	}
	return elapsed, nil
}

func (u *CompiledUnit) runNative(number int, clk clock.Source) (float64, error) {
	if err := u.setupFn(); err != nil {
		return 0, err
	}
	t0 := clk()
	for i := 0; i < number; i++ {
		if err := u.stmtFn(); err != nil {
			return 0, err
		}
	}
	t1 := clk()
	return t1 - t0, nil
}

// Source returns the synthesized source text the unit was compiled from,
// for diagnostic display. Empty for native units.
func (u *CompiledUnit) Source() string { return u.src }

// SourceName returns the virtual filename the unit was compiled under.
func (u *CompiledUnit) SourceName() string { return SourceName }
