// Package flusher flushes a profiler engine on a fixed interval.
package flusher

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/NikitaCOEUR/complexprof/pkg/derrors"
	"github.com/NikitaCOEUR/complexprof/pkg/profiler"
	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Defaults applied to zero Config fields
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
)

// Config controls a Scheduler
type Config struct {
	// Interval between flushes, must be positive
	Interval time.Duration
	// MaxRetries bounds the retries of a failed sink write. Negative disables retries.
	MaxRetries int
	// InitialBackoff and MaxBackoff shape the exponential retry delay
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Scheduler periodically flushes an engine to a sink
type Scheduler struct {
	engine *profiler.Engine
	sink   report.Sink
	cfg    Config
	log    logrus.FieldLogger
}

// New creates a scheduler
func New(engine *profiler.Engine, sink report.Sink, cfg Config, log logrus.FieldLogger) (*Scheduler, error) {
	if engine == nil {
		return nil, fmt.Errorf("flusher: engine is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("flusher: sink is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("flusher: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = DefaultMaxBackoff
		if cfg.MaxBackoff < cfg.InitialBackoff {
			cfg.MaxBackoff = cfg.InitialBackoff
		}
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	return &Scheduler{engine: engine, sink: sink, cfg: cfg, log: log}, nil
}

// Run flushes every interval until ctx is done, then flushes one last time
// so samples recorded since the previous tick are not lost.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.WithFields(logrus.Fields{
		"sink":     s.sink.Name(),
		"interval": s.cfg.Interval.String(),
	}).Debug("periodic flush started")

	for {
		select {
		case <-ctx.Done():
			err := s.FlushOnce(context.WithoutCancel(ctx))
			s.log.WithField("sink", s.sink.Name()).Debug("periodic flush stopped")
			return err
		case <-ticker.C:
			if err := s.FlushOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.WithField("sink", s.sink.Name()).WithError(err).Error("periodic flush failed")
			}
		}
	}
}

// FlushOnce flushes the engine, retrying sink failures with exponential
// backoff. Identity mismatches are returned at once.
func (s *Scheduler) FlushOnce(ctx context.Context) error {
	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{
		"flush_id": id,
		"sink":     s.sink.Name(),
	})

	attempt := 0
	op := func() error {
		attempt++
		err := s.engine.Flush(s.sink)
		if err == nil {
			return nil
		}
		if !derrors.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.WithFields(logrus.Fields{
			"attempt":  attempt,
			"retry_in": wait.String(),
		}).WithError(err).Warn("flush failed, retrying")
	}

	if err := backoff.RetryNotify(op, s.newBackOff(ctx), notify); err != nil {
		return fmt.Errorf("flush %s failed after %d attempt(s): %w", id, attempt, err)
	}

	log.WithField("attempts", attempt).Debug("flush complete")
	return nil
}

func (s *Scheduler) newBackOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.cfg.InitialBackoff
	expo.MaxInterval = s.cfg.MaxBackoff
	expo.MaxElapsedTime = 0

	retries := s.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(expo, uint64(retries)), ctx)
}
