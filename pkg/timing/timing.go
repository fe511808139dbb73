// Package timing provides the clocks used by the profiler.
package timing

import (
	"sync"
	"time"
)

// Clock returns the current time. Implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock with its monotonic reading
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a Clock that only moves when told to
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a manual clock starting at start
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Stopwatch tracks the phases of a longer operation
type Stopwatch struct {
	clock Clock
	start time.Time
	marks map[string]time.Duration
	order []string // Track order of marks for consistent output
}

// NewStopwatch creates a stopwatch started now. A nil clock uses SystemClock.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Stopwatch{
		clock: clock,
		start: clock.Now(),
		marks: make(map[string]time.Duration),
	}
}

// Mark records the elapsed time under label
func (s *Stopwatch) Mark(label string) time.Duration {
	elapsed := s.Elapsed()
	if _, exists := s.marks[label]; !exists {
		s.order = append(s.order, label)
	}
	s.marks[label] = elapsed
	return elapsed
}

// Elapsed returns time elapsed since the stopwatch started
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

// Get returns the duration for a specific mark
func (s *Stopwatch) Get(label string) (time.Duration, bool) {
	d, ok := s.marks[label]
	return d, ok
}

// Labels returns the mark labels in recording order
func (s *Stopwatch) Labels() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
