package timer

import "runtime/debug"

// GCControl is the process-wide collector toggle the trial runner acquires
// around each measurement. It is injected so tests can observe the
// disable/restore discipline without touching the real runtime.
type GCControl interface {
	Enabled() bool
	SetEnabled(bool)
}

// RuntimeGC drives the Go collector through debug.SetGCPercent, swapping
// GOGC between its current value and -1 (off). The last seen percent is
// remembered so re-enabling restores what was configured, not a guess.
type RuntimeGC struct {
	percent int
}

// NewRuntimeGC returns a toggle for the real collector.
func NewRuntimeGC() *RuntimeGC {
	return &RuntimeGC{percent: 100}
}

// Enabled reports whether automatic collection is currently on. There is no
// read-only query in the runtime, so it briefly swaps the percent out and
// back.
func (g *RuntimeGC) Enabled() bool {
	p := debug.SetGCPercent(-1)
	debug.SetGCPercent(p)
	if p >= 0 {
		g.percent = p
	}
	return p >= 0
}

// SetEnabled turns automatic collection on or off.
func (g *RuntimeGC) SetEnabled(on bool) {
	if on {
		debug.SetGCPercent(g.percent)
		return
	}
	if p := debug.SetGCPercent(-1); p >= 0 {
		g.percent = p
	}
}
