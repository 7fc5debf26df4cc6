package timer

import "fmt"

// TrialError reports a trial failure during Repeat. Trial is the
// zero-based index of the failed trial and Completed holds the elapsed
// times of the trials that finished before it, for callers that want the
// partial series. Unwrap exposes the underlying cause untouched.
type TrialError struct {
	Trial     int
	Completed []float64
	Err       error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %d: %v", e.Trial+1, e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }
