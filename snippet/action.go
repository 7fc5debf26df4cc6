// Package snippet builds executable measurement units out of user-supplied
// actions. An action is either a piece of Starlark source text or a plain Go
// closure; Build validates and compiles once, producing a CompiledUnit the
// timing layer can run any number of times.
package snippet

type actionKind int

const (
	kindNone actionKind = iota
	kindSource
	kindCallable
)

// Action is the unit of work handed to Build: either source text or a
// closure, never both. The zero value is invalid and rejected at Build time.
type Action struct {
	kind actionKind
	src  string
	fn   func() error
}

// Source wraps Starlark source text as an action. The text must be valid as
// a standalone block of statements; Build checks this eagerly.
//
// Multi-line text is fine as long as it contains no multi-line string
// literals (the synthesized unit reindents the text line by line).
func Source(src string) Action {
	return Action{kind: kindSource, src: src}
}

// Callable wraps a Go closure as an action. The closure runs directly, with
// no textual validation; a non-nil error aborts the trial.
func Callable(fn func() error) Action {
	return Action{kind: kindCallable, fn: fn}
}

// Pass is the no-op source action, the conventional default for setup.
var Pass = Source("pass")
