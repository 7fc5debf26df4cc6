//go:build !unix

package clock

// Process falls back to the monotonic clock on platforms without
// getrusage. Readings then include time spent off-CPU.
func Process() Source {
	return Monotonic()
}
