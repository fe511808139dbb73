//go:build dev

// Package trace emits runtime/trace regions for development builds.
//
// Usage:
//
//	go build -tags dev ./cmd/complexprof
//	COMPLEXPROF_TRACE=trace.out complexprof demo --workers 8
//	go tool trace trace.out
package trace

import (
	"context"
	"fmt"
	"os"
	"runtime/trace"
	"sync"
)

// EnvVar names the trace output file
const EnvVar = "COMPLEXPROF_TRACE"

var (
	traceFile   *os.File
	traceMu     sync.Mutex
	traceActive bool
)

// Init starts tracing to the file named by COMPLEXPROF_TRACE, if set.
// Returns a cleanup function that should be deferred.
func Init() func() {
	tracePath := os.Getenv(EnvVar)
	if tracePath == "" {
		return func() {}
	}

	traceMu.Lock()
	defer traceMu.Unlock()

	var err error
	traceFile, err = os.Create(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "complexprof: failed to create trace file %s: %v\n", tracePath, err)
		return func() {}
	}

	if err := trace.Start(traceFile); err != nil {
		fmt.Fprintf(os.Stderr, "complexprof: failed to start trace: %v\n", err)
		_ = traceFile.Close()
		traceFile = nil
		return func() {}
	}
	traceActive = true

	return func() {
		traceMu.Lock()
		defer traceMu.Unlock()

		if traceActive {
			trace.Stop()
			traceActive = false
		}
		if traceFile != nil {
			_ = traceFile.Close()
			traceFile = nil
		}
	}
}

// Region starts a region named after a prove point. Returns a function to end it.
func Region(ctx context.Context, name string) func() {
	if !traceActive {
		return func() {}
	}
	return trace.StartRegion(ctx, name).End
}

// Log attaches a message to the trace.
func Log(ctx context.Context, category, message string) {
	if traceActive {
		trace.Log(ctx, category, message)
	}
}

// IsEnabled returns true if tracing is active.
func IsEnabled() bool {
	return traceActive
}
