// Package prove wraps a profiler engine for instrumented call sites. Failures
// are logged with the operation and error code instead of being returned, so
// instrumentation can never break the code it measures.
package prove

import (
	"io"

	"github.com/NikitaCOEUR/complexprof/pkg/derrors"
	"github.com/NikitaCOEUR/complexprof/pkg/profiler"
	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/sirupsen/logrus"
)

// Prover issues prove points against one engine
type Prover struct {
	engine *profiler.Engine
	log    logrus.FieldLogger
}

// New creates a prover. A nil logger discards diagnostics.
func New(engine *profiler.Engine, log logrus.FieldLogger) *Prover {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Prover{engine: engine, log: log}
}

// Engine returns the wrapped engine
func (p *Prover) Engine() *profiler.Engine {
	return p.engine
}

// StartProve starts the span for name. It reports whether the span is running.
func (p *Prover) StartProve(name string) bool {
	if err := p.engine.Start(name); err != nil {
		p.fail("StartProve", name, err)
		return false
	}
	return true
}

// EndProve stops the span for name. It reports whether a sample was recorded.
func (p *Prover) EndProve(name string) bool {
	if err := p.engine.Stop(name); err != nil {
		p.fail("EndProve", name, err)
		return false
	}
	return true
}

// CancelProve abandons the span for name
func (p *Prover) CancelProve(name string) {
	p.engine.Cancel(name)
}

// PrintResult flushes the engine to sink. It reports whether the report was written.
func (p *Prover) PrintResult(sink report.Sink) bool {
	if err := p.engine.Flush(sink); err != nil {
		name := ""
		if sink != nil {
			name = sink.Name()
		}
		p.fail("PrintResult", name, err)
		return false
	}
	return true
}

// Measure starts the span for name and returns the function that stops it:
//
//	defer p.Measure("load-config")()
func (p *Prover) Measure(name string) func() {
	if !p.StartProve(name) {
		return func() {}
	}
	return func() { p.EndProve(name) }
}

// Guard starts the span for name and returns a function that records the
// sample when *errp is nil and cancels the span otherwise:
//
//	func fetch() (err error) {
//		defer p.Guard("fetch", &err)()
func (p *Prover) Guard(name string, errp *error) func() {
	if !p.StartProve(name) {
		return func() {}
	}
	return func() {
		if errp != nil && *errp != nil {
			p.CancelProve(name)
			return
		}
		p.EndProve(name)
	}
}

func (p *Prover) fail(op, name string, err error) {
	p.log.WithFields(logrus.Fields{
		"op":   op,
		"name": name,
		"code": derrors.CodeOf(err),
	}).WithError(err).Error("prove point failed")
}
