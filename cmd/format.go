package cmd

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Scale factors from seconds to each display unit.
var units = []struct {
	name  string
	scale float64
}{
	{"usec", 1e6},
	{"msec", 1e3},
	{"sec", 1},
}

func validUnit(name string) bool {
	for _, u := range units {
		if u.name == name {
			return true
		}
	}
	return false
}

// formatBest renders a per-loop time in seconds. With an empty unit the
// smallest unit keeping the value under 1000 is picked; otherwise the
// requested unit is used as-is.
func formatBest(perLoop float64, unit string) (value, unitName string) {
	if unit != "" {
		for _, u := range units {
			if u.name == unit {
				return fmt.Sprintf("%.3g", perLoop*u.scale), u.name
			}
		}
	}
	for _, u := range units {
		v := perLoop * u.scale
		if v < 1000 || u.name == "sec" {
			return fmt.Sprintf("%.3g", v), u.name
		}
	}
	return fmt.Sprintf("%.3g", perLoop), "sec"
}

// palette wraps output fragments in ANSI colors when stdout is an
// interactive terminal and NO_COLOR is unset.
type palette struct {
	enabled bool
}

func newPalette() palette {
	if os.Getenv("NO_COLOR") != "" {
		return palette{}
	}
	return palette{enabled: term.IsTerminal(int(os.Stdout.Fd()))}
}

func (p palette) time(s string) string { return p.wrap("\033[36m", s) }
func (p palette) runs(s string) string { return p.wrap("\033[33m", s) }

func (p palette) wrap(color, s string) string {
	if !p.enabled {
		return s
	}
	return color + s + "\033[0m"
}
