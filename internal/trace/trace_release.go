//go:build !dev

// Package trace emits runtime/trace regions for development builds.
// Release builds compile to no-ops.
package trace

import "context"

// EnvVar names the trace output file
const EnvVar = "COMPLEXPROF_TRACE"

// Init is a no-op in release builds.
func Init() func() {
	return func() {}
}

// Region is a no-op in release builds.
func Region(_ context.Context, _ string) func() {
	return func() {}
}

// Log is a no-op in release builds.
func Log(_ context.Context, _, _ string) {
}

// IsEnabled always returns false in release builds.
func IsEnabled() bool {
	return false
}
