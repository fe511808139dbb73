package profiler

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NikitaCOEUR/complexprof/pkg/derrors"
	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/NikitaCOEUR/complexprof/pkg/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *timing.ManualClock) {
	t.Helper()
	clock := timing.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return New(WithClock(clock)), clock
}

// finishes runs fn in a goroutine and reports whether it returned within d
func finishes(d time.Duration, fn func()) bool {
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func span(t *testing.T, e *Engine, clock *timing.ManualClock, name string, d time.Duration) {
	t.Helper()
	require.NoError(t, e.Start(name))
	clock.Advance(d)
	require.NoError(t, e.Stop(name))
}

func TestStop_NeverStarted(t *testing.T) {
	e, clock := newTestEngine(t)

	err := e.Stop("unknown")
	require.Error(t, err)
	assert.True(t, derrors.IsNotStarted(err))

	// Known name without a pending start
	span(t, e, clock, "known", time.Millisecond)
	err = e.Stop("known")
	require.Error(t, err)
	assert.True(t, derrors.IsNotStarted(err))

	var nse *derrors.NotStartedError
	require.ErrorAs(t, err, &nse)
	assert.Equal(t, "known", nse.Name)

	// The failed Stop must not have released anything: the lock is free anyway
	assert.True(t, finishes(time.Second, func() { _ = e.Start("known") }))
}

func TestStartStop_Aggregates(t *testing.T) {
	e, clock := newTestEngine(t)

	span(t, e, clock, "db", 10*time.Millisecond)
	span(t, e, clock, "db", 30*time.Millisecond)
	span(t, e, clock, "db", 20*time.Millisecond)

	agg, ok := e.Snapshot("db")
	require.True(t, ok)
	assert.Equal(t, uint64(3), agg.Count)
	assert.Equal(t, 60*time.Millisecond, agg.Total)
	assert.Equal(t, 30*time.Millisecond, agg.Max)
	assert.Equal(t, 10*time.Millisecond, agg.Min)
	assert.Equal(t, 20*time.Millisecond, agg.Average())
	assert.False(t, e.Running("db"))
}

func TestAggregate_ZeroDurationMin(t *testing.T) {
	e, clock := newTestEngine(t)

	span(t, e, clock, "fast", 0)
	span(t, e, clock, "fast", 5*time.Millisecond)

	agg, ok := e.Snapshot("fast")
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), agg.Min, "a zero sample is a real minimum")
	assert.Equal(t, 5*time.Millisecond, agg.Max)
	assert.Equal(t, uint64(2), agg.Count)
}

func TestAggregate_Record(t *testing.T) {
	tests := []struct {
		name    string
		samples []time.Duration
		want    Aggregate
	}{
		{
			name:    "single sample",
			samples: []time.Duration{7},
			want:    Aggregate{Total: 7, Max: 7, Min: 7, Count: 1},
		},
		{
			name:    "decreasing",
			samples: []time.Duration{9, 5, 1},
			want:    Aggregate{Total: 15, Max: 9, Min: 1, Count: 3},
		},
		{
			name:    "zero first",
			samples: []time.Duration{0, 4},
			want:    Aggregate{Total: 4, Max: 4, Min: 0, Count: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var agg Aggregate
			for _, s := range tt.samples {
				agg.record(s)
			}
			assert.Equal(t, tt.want, agg)
		})
	}

	assert.Equal(t, time.Duration(0), Aggregate{}.Average())
	assert.Equal(t, time.Duration(3), Aggregate{Total: 10, Count: 3}.Average(), "integer division")
}

func TestCancel_LeavesAggregateAndReleasesLock(t *testing.T) {
	e, clock := newTestEngine(t)

	span(t, e, clock, "op", 4*time.Millisecond)
	before, _ := e.Snapshot("op")

	require.NoError(t, e.Start("op"))
	assert.True(t, e.Running("op"))
	clock.Advance(time.Second)
	e.Cancel("op")
	assert.False(t, e.Running("op"))

	after, _ := e.Snapshot("op")
	assert.Equal(t, before, after)

	assert.True(t, finishes(time.Second, func() {
		assert.NoError(t, e.Start("op"))
		e.Cancel("op")
	}), "Start after Cancel must not block")
}

func TestCancel_NotRunning(t *testing.T) {
	e, clock := newTestEngine(t)

	e.Cancel("never-registered")

	span(t, e, clock, "idle", time.Millisecond)
	e.Cancel("idle")
	e.Cancel("idle")

	agg, ok := e.Snapshot("idle")
	require.True(t, ok)
	assert.Equal(t, uint64(1), agg.Count)
	assert.True(t, finishes(time.Second, func() { _ = e.Start("idle") }))
}

func TestStart_BlocksUntilStop(t *testing.T) {
	e := New()
	require.NoError(t, e.Start("shared"))

	started := make(chan struct{})
	go func() {
		_ = e.Start("shared")
		close(started)
	}()

	select {
	case <-started:
		t.Fatal("second Start returned while the span was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, e.Stop("shared"))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("second Start did not resume after Stop")
	}
	require.NoError(t, e.Stop("shared"))
}

func TestDistinctNamesDoNotBlock(t *testing.T) {
	e := New()
	require.NoError(t, e.Start("outer"))

	assert.True(t, finishes(time.Second, func() {
		assert.NoError(t, e.Start("inner"))
		assert.NoError(t, e.Stop("inner"))
	}))
	require.NoError(t, e.Stop("outer"))
}

func TestConcurrentSpans_SameName(t *testing.T) {
	e := New()

	const workers = 16
	const pairs = 200

	var inFlight, overlaps atomic.Int32
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < pairs; i++ {
				if err := e.Start("hot"); err != nil {
					t.Error(err)
					return
				}
				if inFlight.Add(1) > 1 {
					overlaps.Add(1)
				}
				inFlight.Add(-1)
				if err := e.Stop("hot"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, overlaps.Load(), "spans of one name must never overlap")
	agg, ok := e.Snapshot("hot")
	require.True(t, ok)
	assert.Equal(t, uint64(workers*pairs), agg.Count)
	assert.GreaterOrEqual(t, agg.Max, agg.Min)
	assert.GreaterOrEqual(t, agg.Total, agg.Max)
}

func TestIdentityMismatch(t *testing.T) {
	var pid atomic.Int64
	pid.Store(100)
	e := New(WithProcessID(func() int { return int(pid.Load()) }))

	require.NoError(t, e.Start("forked"))

	pid.Store(200)
	err := e.Stop("forked")
	require.Error(t, err)
	assert.True(t, derrors.IsIdentityMismatch(err))

	var ime *derrors.IdentityMismatchError
	require.ErrorAs(t, err, &ime)
	assert.Equal(t, "Stop", ime.Op)
	assert.Equal(t, 100, ime.Expected)
	assert.Equal(t, 200, ime.Actual)

	err = e.Start("other")
	assert.True(t, derrors.IsIdentityMismatch(err))
	err = e.Flush(report.NewWriterSink("buf", &bytes.Buffer{}))
	assert.True(t, derrors.IsIdentityMismatch(err))

	// The failed Stop released the lock
	pid.Store(100)
	assert.True(t, finishes(time.Second, func() {
		assert.NoError(t, e.Start("forked"))
		assert.NoError(t, e.Stop("forked"))
	}))

	agg, ok := e.Snapshot("forked")
	require.True(t, ok)
	assert.Equal(t, uint64(1), agg.Count, "the failed Stop must not record a sample")
}

func TestClose(t *testing.T) {
	e, clock := newTestEngine(t)
	span(t, e, clock, "a", time.Millisecond)

	e.Close()
	e.Close()

	assert.True(t, derrors.IsIdentityMismatch(e.Start("a")))
	assert.True(t, derrors.IsIdentityMismatch(e.Stop("a")))
	e.Cancel("a")
}

func TestNames(t *testing.T) {
	e, clock := newTestEngine(t)
	span(t, e, clock, "zeta", 1)
	span(t, e, clock, "alpha", 1)
	span(t, e, clock, "mid", 1)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, e.Names())

	_, ok := e.Snapshot("unknown")
	assert.False(t, ok)
	assert.False(t, e.Running("unknown"))
}

func TestStop_ClockGoingBackwards(t *testing.T) {
	e, clock := newTestEngine(t)

	require.NoError(t, e.Start("skew"))
	clock.Advance(-time.Second)
	require.NoError(t, e.Stop("skew"))

	agg, _ := e.Snapshot("skew")
	assert.Equal(t, time.Duration(0), agg.Total)
}

func TestErrorsAreTyped(t *testing.T) {
	e := New()
	err := e.Stop("x")
	assert.Equal(t, derrors.CodeNotStarted, derrors.CodeOf(err))
	assert.False(t, derrors.IsRetryable(err))
}
