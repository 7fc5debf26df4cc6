package snippet

import "fmt"

// Phase identifies which action an error belongs to.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseStatement Phase = "statement"
)

// ValidationError reports source text that failed to compile. It is raised
// by Build, before any timing happens, and never at run time.
type ValidationError struct {
	Phase Phase
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s snippet: %v", e.Phase, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConfigurationError reports an action that is neither source text nor a
// usable callable (the zero Action, or Callable(nil)).
type ConfigurationError struct {
	Phase Phase
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is neither a source snippet nor a callable", e.Phase)
}
