package snippet

import (
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// SourceName is the virtual filename the synthesized unit is compiled
// under. It shows up in Starlark backtraces so the CLI can render readable
// locations instead of an opaque internal frame.
const SourceName = "<timeit-src>"

// The synthesized unit. Setup runs once inside the function body, then two
// timer readings bracket the statement loop, so per-iteration clock
// overhead is never paid. Setup is reindented 4 spaces and the statement 8;
// unitTemplate depends on that.
const unitTemplate = `def inner(_it, _timer):
    %s
    _t0 = _timer()
    for _i in range(_it):
        %s
    _t1 = _timer()
    return _t1 - _t0
`

// Snippets are a Python-shaped dialect, so keep the permissive feature set:
// while loops, top-level control flow, set literals, recursion.
var fileOpts = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// Build validates both actions and compiles them into a reusable unit.
// Source actions are checked eagerly: setup must parse as a standalone
// block, and a source statement is parsed as if concatenated after the
// setup text so names the setup introduces are visible to it. Callables
// skip textual validation and are bridged into the unit directly.
//
// When both actions are callables the unit runs a native Go loop; as soon
// as source text is involved, the whole trial runs through the synthesized
// Starlark function so setup locals stay visible to the statement.
func Build(setup, stmt Action) (*CompiledUnit, error) {
	if err := checkAction(setup, PhaseSetup); err != nil {
		return nil, err
	}
	if err := checkAction(stmt, PhaseStatement); err != nil {
		return nil, err
	}
	if setup.kind == kindCallable && stmt.kind == kindCallable {
		return &CompiledUnit{setupFn: setup.fn, stmtFn: stmt.fn}, nil
	}
	return buildStarlark(setup, stmt)
}

func checkAction(a Action, phase Phase) error {
	if a.kind == kindNone || (a.kind == kindCallable && a.fn == nil) {
		return &ConfigurationError{Phase: phase}
	}
	return nil
}

func buildStarlark(setup, stmt Action) (*CompiledUnit, error) {
	predeclared := starlark.StringDict{}

	var prefix, setupPart, stmtPart string
	var setupLines int
	switch setup.kind {
	case kindSource:
		if _, err := fileOpts.Parse(SourceName, setup.src+"\n", 0); err != nil {
			return nil, &ValidationError{Phase: PhaseSetup, Err: err}
		}
		prefix = setup.src + "\n"
		setupPart = reindent(setup.src, 4)
		setupLines = 1 + strings.Count(setup.src, "\n")
	case kindCallable:
		predeclared["_setup"] = bridge("_setup", setup.fn)
		setupPart = "_setup()"
		setupLines = 1
	}
	switch stmt.kind {
	case kindSource:
		if _, err := fileOpts.Parse(SourceName, prefix+stmt.src+"\n", 0); err != nil {
			return nil, &ValidationError{Phase: PhaseStatement, Err: err}
		}
		stmtPart = reindent(stmt.src, 8)
	case kindCallable:
		predeclared["_stmt"] = bridge("_stmt", stmt.fn)
		stmtPart = "_stmt()"
	}

	src := fmt.Sprintf(unitTemplate, setupPart, stmtPart)
	thread := &starlark.Thread{Name: "timeit.build"}
	globals, err := starlark.ExecFileOptions(fileOpts, thread, SourceName, src, predeclared)
	if err != nil {
		// The standalone parses above passed, so this is a resolve-level
		// failure (e.g. an undefined name). Attribute it by template line.
		return nil, &ValidationError{Phase: phaseAt(err, setupLines), Err: err}
	}
	inner, ok := globals["inner"]
	if !ok {
		return nil, fmt.Errorf("synthesized unit defines no inner function")
	}
	return &CompiledUnit{inner: inner, src: src}, nil
}

// reindent shifts every line after the first by indent spaces, matching the
// placeholder columns in unitTemplate.
func reindent(src string, indent int) string {
	return strings.ReplaceAll(src, "\n", "\n"+strings.Repeat(" ", indent))
}

// bridge exposes a Go closure to the synthesized unit as a zero-argument
// Starlark builtin.
func bridge(name string, fn func() error) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, _ *starlark.Builtin, _ starlark.Tuple, _ []starlark.Tuple) (starlark.Value, error) {
		if err := fn(); err != nil {
			return nil, err
		}
		return starlark.None, nil
	})
}

// phaseAt maps a compile error to the setup or statement phase using the
// fixed layout of unitTemplate: setup occupies template lines 2 through
// setupLines+1, the statement everything after the loop header.
func phaseAt(err error, setupLines int) Phase {
	line, ok := errorLine(err)
	if ok && line >= 2 && line <= setupLines+1 {
		return PhaseSetup
	}
	return PhaseStatement
}

func errorLine(err error) (int, bool) {
	var rerrs resolve.ErrorList
	if errors.As(err, &rerrs) && len(rerrs) > 0 {
		return int(rerrs[0].Pos.Line), true
	}
	var serr syntax.Error
	if errors.As(err, &serr) {
		return int(serr.Pos.Line), true
	}
	return 0, false
}
