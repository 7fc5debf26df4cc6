package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"go.starlark.net/starlark"

	"github.com/rubiojr/timeit/clock"
	"github.com/rubiojr/timeit/snippet"
	"github.com/rubiojr/timeit/timer"
)

// Execute runs the timeit CLI with the given version string.
func Execute(version string) {
	cmd := &cli.Command{
		Name:                   "timeit",
		Usage:                  "Measure execution time of small code snippets",
		ArgsUsage:              "[statement...]",
		Version:                version,
		UseShortOptionHandling: true,
		Description: "Times a statement written in Starlark, a Python dialect. Multiple\n" +
			"statement arguments are joined with newlines, so a multi-line statement\n" +
			"can be given one line per argument. Repeated -s options are joined the\n" +
			"same way. Without -n, a suitable loop count is found by trying powers\n" +
			"of ten until the total time reaches 0.2 seconds.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "number",
				Aliases: []string{"n"},
				Usage:   "How many times to execute the statement (0 = auto)",
			},
			&cli.IntFlag{
				Name:    "repeat",
				Aliases: []string{"r"},
				Usage:   "How many times to repeat the trial",
				Value:   timer.DefaultRepeat,
			},
			&cli.StringSliceFlag{
				Name:    "setup",
				Aliases: []string{"s"},
				Usage:   "Statement executed once, untimed, before the loop",
			},
			&cli.BoolFlag{
				Name:    "process",
				Aliases: []string{"p"},
				Usage:   "Measure process CPU time instead of wall time",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print raw timing results",
			},
			&cli.StringFlag{
				Name:    "unit",
				Aliases: []string{"u"},
				Usage:   "Output time unit (usec, msec, or sec)",
			},
		},
		Action: benchAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func benchAction(ctx context.Context, cmd *cli.Command) error {
	stmtText := strings.Join(cmd.Args().Slice(), "\n")
	if stmtText == "" {
		stmtText = "pass"
	}
	setupText := strings.Join(cmd.StringSlice("setup"), "\n")
	if setupText == "" {
		setupText = "pass"
	}

	unit := cmd.String("unit")
	if unit != "" && !validUnit(unit) {
		fmt.Fprintln(os.Stderr, "unrecognized unit, use usec, msec, or sec")
		os.Exit(2)
	}

	number := int(cmd.Int("number"))
	repeat := int(cmd.Int("repeat"))
	if repeat <= 0 {
		repeat = 1
	}
	verbose := cmd.Bool("verbose")

	clk := clock.Monotonic()
	if cmd.Bool("process") {
		clk = clock.Process()
	}

	// Validation errors surface here, before any timing output.
	t, err := timer.New(snippet.Source(setupText), snippet.Source(stmtText), timer.WithClock(clk))
	if err != nil {
		return err
	}

	if number == 0 {
		var cb func(int, float64)
		if verbose {
			cb = func(n int, elapsed float64) {
				fmt.Printf("%s loops -> %.3g secs\n", humanize.Comma(int64(n)), elapsed)
			}
		}
		number, _, err = t.Autorange(cb)
		if err != nil {
			printTraceback(t, err)
			os.Exit(1)
		}
	}

	series, err := t.Repeat(repeat, number)
	if err != nil {
		printTraceback(t, err)
		os.Exit(1)
	}

	if verbose {
		raw := make([]string, len(series))
		for i, x := range series {
			raw[i] = fmt.Sprintf("%.3g", x)
		}
		fmt.Printf("raw times: %s\n", strings.Join(raw, " "))
	}

	best := series[0]
	for _, x := range series[1:] {
		if x < best {
			best = x
		}
	}

	value, unitName := formatBest(best/float64(number), unit)
	pal := newPalette()
	fmt.Printf("%s loops, best of %d: %s per loop\n",
		pal.runs(humanize.Comma(int64(number))), repeat,
		pal.time(value+" "+unitName))
	return nil
}

// printTraceback reports a trial failure with the synthesized source so the
// <timeit-src> frames in the backtrace have something to point at.
func printTraceback(t *timer.Timer, err error) {
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		fmt.Fprintln(os.Stderr, evalErr.Backtrace())
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	src := t.Source()
	if src == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "%s:\n", t.SourceName())
	for i, line := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
		fmt.Fprintf(os.Stderr, "%4d  %s\n", i+1, line)
	}
}
