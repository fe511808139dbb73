// Package report defines the flushed profile report, its text layouts and the
// sinks it can be appended to.
package report

import (
	"sort"
	"time"
)

// Row holds the statistics of one timer name at flush time. Durations are nanoseconds.
type Row struct {
	Name    string
	Total   time.Duration
	Max     time.Duration
	Min     time.Duration
	Count   uint64
	Average time.Duration
}

// Report is a snapshot of every timer that recorded at least one sample since the previous flush
type Report struct {
	FlushedAt time.Time
	Rows      []Row
}

// New creates a report with rows sorted by name
func New(flushedAt time.Time, rows []Row) *Report {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Report{FlushedAt: flushedAt, Rows: sorted}
}

// Row returns the row for name
func (r *Report) Row(name string) (Row, bool) {
	i := sort.Search(len(r.Rows), func(i int) bool { return r.Rows[i].Name >= name })
	if i < len(r.Rows) && r.Rows[i].Name == name {
		return r.Rows[i], true
	}
	return Row{}, false
}

// Empty reports whether the report has no rows
func (r *Report) Empty() bool {
	return len(r.Rows) == 0
}
