package timer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/timeit/clock"
	"github.com/rubiojr/timeit/snippet"
)

// fakeGC records toggle transitions so tests can observe the trial
// runner's acquire/release discipline.
type fakeGC struct {
	enabled bool
	log     []bool
}

func (g *fakeGC) Enabled() bool      { return g.enabled }
func (g *fakeGC) SetEnabled(on bool) { g.enabled = on; g.log = append(g.log, on) }

// costTimer builds a Timer whose statement advances the injected clock by
// cost seconds per invocation, so elapsed is exactly number*cost.
func costTimer(t *testing.T, cost float64, gc GCControl) *Timer {
	t.Helper()
	var now float64
	tm, err := New(
		snippet.Callable(func() error { return nil }),
		snippet.Callable(func() error { now += cost; return nil }),
		WithClock(func() float64 { return now }),
		WithGC(gc),
	)
	require.NoError(t, err)
	return tm
}

func TestTimeitDisablesGCDuringRun(t *testing.T) {
	gc := &fakeGC{enabled: true}
	var sawEnabled bool
	tm, err := New(
		snippet.Callable(func() error { return nil }),
		snippet.Callable(func() error { sawEnabled = gc.enabled; return nil }),
		WithClock(clock.Monotonic()),
		WithGC(gc),
	)
	require.NoError(t, err)

	elapsed, err := tm.Timeit(10)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 0.0)
	assert.False(t, sawEnabled, "collector should be off inside the trial")
	assert.True(t, gc.enabled, "collector should be restored after the trial")
}

func TestTimeitRestoresGCOnError(t *testing.T) {
	boom := errors.New("boom")
	gc := &fakeGC{enabled: true}
	tm, err := New(
		snippet.Callable(func() error { return nil }),
		snippet.Callable(func() error { return boom }),
		WithGC(gc),
	)
	require.NoError(t, err)

	_, err = tm.Timeit(10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, gc.enabled)
}

func TestTimeitLeavesDisabledGCAlone(t *testing.T) {
	gc := &fakeGC{enabled: false}
	tm := costTimer(t, 0.001, gc)

	_, err := tm.Timeit(10)
	require.NoError(t, err)
	assert.False(t, gc.enabled)
	assert.NotContains(t, gc.log, true, "a disabled collector must stay disabled")
}

func TestRepeatSeriesLength(t *testing.T) {
	tm := costTimer(t, 0.001, &fakeGC{enabled: true})
	series, err := tm.Repeat(5, 100)
	require.NoError(t, err)
	require.Len(t, series, 5)
	for _, x := range series {
		assert.InDelta(t, 0.1, x, 1e-6)
	}
}

func TestRepeatAbortsOnTrialError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	gc := &fakeGC{enabled: true}
	tm, err := New(
		snippet.Callable(func() error { return nil }),
		snippet.Callable(func() error {
			calls++
			if calls > 20 { // fail during the third trial of 10 iterations
				return boom
			}
			return nil
		}),
		WithGC(gc),
	)
	require.NoError(t, err)

	series, err := tm.Repeat(5, 10)
	require.Error(t, err)
	assert.Nil(t, series)
	assert.True(t, errors.Is(err, boom))
	assert.True(t, gc.enabled)

	var terr *TrialError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, 2, terr.Trial)
	assert.Len(t, terr.Completed, 2)
}

func TestAutorangeFirstCrossing(t *testing.T) {
	var attempts []int
	trial := func(n int) (float64, error) {
		attempts = append(attempts, n)
		return float64(n) * 0.001, nil
	}

	number, elapsed, err := autorange(trial, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, number)
	assert.InDelta(t, 1.0, elapsed, 1e-9)
	assert.Equal(t, []int{10, 100, 1000}, attempts)
}

func TestAutorangeBestEffortWhenFloorUnreached(t *testing.T) {
	var attempts int
	trial := func(n int) (float64, error) {
		attempts++
		return float64(n) * 1e-12, nil
	}

	number, elapsed, err := autorange(trial, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000000000, number)
	assert.InDelta(t, 1e-3, elapsed, 1e-9)
	assert.Equal(t, 9, attempts)
}

func TestAutorangeAbortsOnFirstTrialError(t *testing.T) {
	boom := errors.New("boom")
	var attempts []int
	trial := func(n int) (float64, error) {
		attempts = append(attempts, n)
		return 0, boom
	}

	_, _, err := autorange(trial, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []int{10}, attempts, "no larger power may be attempted after a failure")
}

func TestAutorangeCallbackObservesAttempts(t *testing.T) {
	var seen []float64
	trial := func(n int) (float64, error) { return float64(n) * 0.01, nil }

	number, _, err := autorange(trial, func(n int, elapsed float64) {
		seen = append(seen, elapsed)
	})
	require.NoError(t, err)
	assert.Equal(t, 100, number)
	assert.Equal(t, []float64{0.1, 1.0}, seen)
}

func TestTimerAutorangeEndToEnd(t *testing.T) {
	tm := costTimer(t, 0.001, &fakeGC{enabled: true})
	number, elapsed, err := tm.Autorange(nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, number)
	assert.InDelta(t, 1.0, elapsed, 1e-6)
}

func TestAutorangeErrorOnFirstTrialEndToEnd(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	tm, err := New(
		snippet.Callable(func() error { return nil }),
		snippet.Callable(func() error { calls++; return boom }),
		WithGC(&fakeGC{enabled: true}),
	)
	require.NoError(t, err)

	_, _, err = tm.Autorange(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, calls)
}

func TestNewPropagatesValidationError(t *testing.T) {
	_, err := New(snippet.Source("def"), snippet.Pass)
	require.Error(t, err)
	var verr *snippet.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPackageConvenienceFunctions(t *testing.T) {
	elapsed, err := Timeit(snippet.Source("x = 1"), snippet.Source("x = x + 1"), 1000,
		WithClock(clock.Stub(0.0, 5.0)), WithGC(&fakeGC{enabled: true}))
	require.NoError(t, err)
	assert.Equal(t, 5.0, elapsed)

	series, err := Repeat(snippet.Source("x = 1"), snippet.Source("x = x + 1"), 3, 10,
		WithClock(clock.Stub(0.0, 2.0)), WithGC(&fakeGC{enabled: true}))
	require.NoError(t, err)
	require.Len(t, series, 3)
}

func TestMinReductionEstimatesCost(t *testing.T) {
	tm := costTimer(t, 0.002, &fakeGC{enabled: true})
	series, err := tm.Repeat(3, 50)
	require.NoError(t, err)

	best := series[0]
	for _, x := range series[1:] {
		if x < best {
			best = x
		}
	}
	assert.InDelta(t, 0.002, best/50, 1e-6)
}

func TestRuntimeGCToggle(t *testing.T) {
	g := NewRuntimeGC()
	initial := g.Enabled()
	defer g.SetEnabled(initial)

	g.SetEnabled(false)
	assert.False(t, g.Enabled())
	g.SetEnabled(true)
	assert.True(t, g.Enabled())
}
