// Package profiler measures named code spans ("prove points") and aggregates
// their elapsed time per name.
//
// An Engine is shared by every goroutine of a process. Each name owns a
// dedicated, non-reentrant lock: Start acquires it and keeps it held until
// the matching Stop or Cancel releases it, so spans of one name never
// overlap. Spans of different names are independent.
//
// Usage contract:
//   - Start, Stop and Cancel for one name must be issued by the same logical
//     holder. Stop or Cancel from anyone else corrupts the measurement.
//   - Calling Start twice for the same name without a Stop or Cancel in
//     between blocks forever.
//   - A Start that is never matched blocks every later Start of that name.
//   - Names should come from code, not from request data: every name keeps
//     its lock for the lifetime of the engine.
package profiler

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/NikitaCOEUR/complexprof/pkg/derrors"
	"github.com/NikitaCOEUR/complexprof/pkg/timing"
	"github.com/sirupsen/logrus"
)

// Engine aggregates prove point timings
type Engine struct {
	registry *registry
	clock    timing.Clock
	epoch    time.Time
	getpid   func() int
	pid      atomic.Int64 // 0 once closed
	log      logrus.FieldLogger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for measurements
func WithClock(clock timing.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithProcessID replaces os.Getpid as the source of the process identity
func WithProcessID(getpid func() int) Option {
	return func(e *Engine) {
		if getpid != nil {
			e.getpid = getpid
		}
	}
}

// WithLogger sets the logger used for debug diagnostics
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an engine bound to the calling process
func New(opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		registry: newRegistry(),
		clock:    timing.SystemClock{},
		getpid:   os.Getpid,
		log:      discard,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.epoch = e.clock.Now()
	e.pid.Store(int64(e.getpid()))
	return e
}

// Start begins a span for name. It blocks until no other span of name is in
// flight and returns with the name's lock held.
func (e *Engine) Start(name string) error {
	if err := e.checkIdentity("Start"); err != nil {
		return err
	}

	ent, created := e.registry.ensure(name)
	if created {
		e.log.WithField("name", name).Debug("registered prove point")
	}

	ent.acquire()
	ent.pending.Store(e.offset())
	return nil
}

// Stop ends the span for name, records its elapsed time and releases the
// name's lock. It fails with a NotStartedError when no span is pending, in
// which case the lock is left alone since this caller never took it.
func (e *Engine) Stop(name string) error {
	now := e.offset()
	ent := e.registry.lookup(name)

	if err := e.checkIdentity("Stop"); err != nil {
		if ent != nil && ent.pending.Swap(noStart) != noStart {
			ent.release()
		}
		return err
	}

	if ent == nil {
		return derrors.NewNotStartedError("Stop", name)
	}
	start := ent.pending.Swap(noStart)
	if start == noStart {
		return derrors.NewNotStartedError("Stop", name)
	}

	elapsed := time.Duration(now - start)
	if elapsed < 0 {
		elapsed = 0
	}
	ent.agg.record(elapsed)
	ent.release()
	return nil
}

// Cancel abandons the span for name without recording a sample and releases
// its lock. It never fails; cancelling a name that is not running does nothing.
func (e *Engine) Cancel(name string) {
	ent := e.registry.lookup(name)
	if ent == nil {
		return
	}
	if ent.pending.Swap(noStart) != noStart {
		ent.release()
	}
}

// Running reports whether a span of name is in flight
func (e *Engine) Running(name string) bool {
	ent := e.registry.lookup(name)
	return ent != nil && ent.pending.Load() != noStart
}

// Snapshot returns the current aggregate for name. It takes the name's lock,
// so it must not be called by the holder of an in-flight span of name.
func (e *Engine) Snapshot(name string) (Aggregate, bool) {
	ent := e.registry.lookup(name)
	if ent == nil {
		return Aggregate{}, false
	}

	ent.acquire()
	defer ent.release()
	return ent.agg, ent.agg.Count > 0
}

// Names returns every registered name in sorted order
func (e *Engine) Names() []string {
	entries := e.registry.sorted()
	names := make([]string, len(entries))
	for i, ent := range entries {
		names[i] = ent.name
	}
	return names
}

// Close invalidates the engine. Later Start, Stop and Flush calls fail with
// an IdentityMismatchError.
func (e *Engine) Close() {
	if e.pid.Swap(0) != 0 {
		e.log.WithField("names", e.registry.len()).Debug("profiler closed")
	}
}

func (e *Engine) checkIdentity(op string) error {
	expected := int(e.pid.Load())
	actual := e.getpid()
	if expected == 0 || expected != actual {
		e.log.WithFields(logrus.Fields{
			"op":       op,
			"expected": expected,
			"actual":   actual,
		}).Debug("process identity check failed")
		return derrors.NewIdentityMismatchError(op, expected, actual)
	}
	return nil
}

// offset returns nanoseconds elapsed since the engine epoch
func (e *Engine) offset() int64 {
	return int64(e.clock.Now().Sub(e.epoch))
}
