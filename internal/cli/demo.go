package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/NikitaCOEUR/complexprof/internal/config"
	"github.com/NikitaCOEUR/complexprof/internal/logger"
	"github.com/NikitaCOEUR/complexprof/internal/trace"
	"github.com/NikitaCOEUR/complexprof/pkg/flusher"
	"github.com/NikitaCOEUR/complexprof/pkg/profiler"
	"github.com/NikitaCOEUR/complexprof/pkg/prove"
	"github.com/NikitaCOEUR/complexprof/pkg/timing"
)

// Prove point names used by the demo
const (
	DemoMillisecond = "test-msec"
	DemoSecond      = "test-sec"
	DemoConcurrent  = "demo-concurrent"

	// DemoLabel is used when neither a flag nor a config file names a label
	DemoLabel = "test"
)

// DemoParams contains parameters for the Demo command
type DemoParams struct {
	ConfigPath string
	LogLevel   string
	Label      string
	Dir        string
	Workers    int
	Iterations int
	// Short skips the one second sample
	Short bool
	// Work is the duration of each concurrent sample
	Work      time.Duration
	Out       io.Writer
	LogOutput io.Writer
}

// Demo measures a few spans, optionally under concurrent load, and flushes
// the result to the configured report file
func Demo(params DemoParams) error {
	cfg, err := loadConfig(params.ConfigPath)
	if err != nil {
		return err
	}
	if params.Label == "" && cfg.Report.Label == config.Defaults().Report.Label {
		params.Label = DemoLabel
	}
	applyOverrides(cfg, params.LogLevel, params.Label, params.Dir)
	if err := checkConfig(cfg); err != nil {
		return err
	}

	sink, err := cfg.Sink()
	if err != nil {
		return err
	}
	path, _ := sink.Path()

	log := logger.New(cfg.LogLevel, params.LogOutput)
	engine := profiler.New(profiler.WithLogger(log.FieldLogger()))
	defer engine.Close()
	p := prove.New(engine, log.FieldLogger())

	defer trace.Init()()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var schedDone chan error
	if cfg.Flush.Interval > 0 {
		sched, err := flusher.New(engine, sink, flusher.Config{
			Interval:   cfg.Flush.Interval,
			MaxRetries: cfg.Flush.MaxRetries,
		}, log.FieldLogger())
		if err != nil {
			return err
		}
		schedDone = make(chan error, 1)
		go func() { schedDone <- sched.Run(ctx) }()
		log.Debug().Dur("interval", cfg.Flush.Interval).Msg("Periodic flush enabled")
	}

	sw := timing.NewStopwatch(nil)

	sample(ctx, p, DemoMillisecond, time.Millisecond)
	sw.Mark(DemoMillisecond)

	if !params.Short {
		sample(ctx, p, DemoSecond, time.Second)
		sw.Mark(DemoSecond)
	}

	if params.Workers > 0 && params.Iterations > 0 {
		runWorkers(ctx, p, params.Workers, params.Iterations, params.Work)
		sw.Mark(DemoConcurrent)
	}
	trace.Log(ctx, "flush", sink.Name())

	if schedDone != nil {
		cancel()
		err = <-schedDone
	} else {
		err = engine.Flush(sink)
	}
	if err != nil {
		log.Error().Str("sink", sink.Name()).Err(err).Msg("Failed to write profile report")
		return fmt.Errorf("failed to write profile report: %w", err)
	}

	entry := log.Info().Str("report", path).Dur("elapsed", sw.Elapsed())
	for _, label := range sw.Labels() {
		d, _ := sw.Get(label)
		entry = entry.Dur(label, d)
	}
	entry.Msg("Demo complete")

	fmt.Fprintf(outOrStdout(params.Out), "Report appended to %s\n", path)
	return nil
}

func sample(ctx context.Context, p *prove.Prover, name string, d time.Duration) {
	defer trace.Region(ctx, name)()
	p.StartProve(name)
	time.Sleep(d)
	p.EndProve(name)
}

func runWorkers(ctx context.Context, p *prove.Prover, workers, iterations int, work time.Duration) {
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				end := trace.Region(ctx, DemoConcurrent)
				stop := p.Measure(DemoConcurrent)
				if work > 0 {
					time.Sleep(work)
				}
				stop()
				end()
			}
		}()
	}
	wg.Wait()
}
