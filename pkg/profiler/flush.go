package profiler

import (
	"github.com/NikitaCOEUR/complexprof/pkg/derrors"
	"github.com/NikitaCOEUR/complexprof/pkg/report"
	"github.com/sirupsen/logrus"
)

// Flush writes a report of every name with at least one sample to sink and
// then resets all aggregates.
//
// Flush holds every name's lock while it builds and writes the report, so it
// stops all timer activity of the engine for that time and waits for every
// in-flight span to finish first. Use it periodically, not per request.
// Names registered while Flush waits are left for the next flush.
//
// When the sink fails the aggregates are kept and a SinkWriteError is returned.
func (e *Engine) Flush(sink report.Sink) error {
	if err := e.checkIdentity("Flush"); err != nil {
		return err
	}
	if sink == nil {
		return derrors.NewSinkWriteError("", "no report sink given", nil)
	}

	entries := e.registry.sorted()
	acquireAll(entries)
	defer releaseAll(entries)

	rows := make([]report.Row, 0, len(entries))
	for _, ent := range entries {
		if ent.agg.Count == 0 {
			continue
		}
		rows = append(rows, report.Row{
			Name:    ent.name,
			Total:   ent.agg.Total,
			Max:     ent.agg.Max,
			Min:     ent.agg.Min,
			Count:   ent.agg.Count,
			Average: ent.agg.Average(),
		})
	}

	rep := report.New(e.clock.Now(), rows)
	if err := sink.Write(rep); err != nil {
		e.log.WithFields(logrus.Fields{
			"sink": sink.Name(),
			"rows": len(rows),
		}).WithError(err).Debug("profile report not written, aggregates kept")
		return derrors.NewSinkWriteError(sink.Name(), "failed to write profile report", err)
	}

	for _, ent := range entries {
		ent.agg.reset()
	}

	e.log.WithFields(logrus.Fields{
		"sink": sink.Name(),
		"rows": len(rows),
	}).Debug("profile report flushed")
	return nil
}
