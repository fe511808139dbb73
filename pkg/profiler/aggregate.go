package profiler

import "time"

// Aggregate holds the statistics of one timer name since the last flush.
// Count == 0 means no sample was recorded and the other fields are zero.
type Aggregate struct {
	Total time.Duration
	Max   time.Duration
	Min   time.Duration
	Count uint64
}

// Average returns Total / Count using integer division, or 0 without samples
func (a Aggregate) Average() time.Duration {
	if a.Count == 0 {
		return 0
	}
	return a.Total / time.Duration(a.Count)
}

// record adds one sample. The first sample after a reset always sets Min,
// so a genuine zero-duration sample is kept rather than treated as unset.
func (a *Aggregate) record(elapsed time.Duration) {
	if a.Count == 0 || elapsed < a.Min {
		a.Min = elapsed
	}
	if elapsed > a.Max {
		a.Max = elapsed
	}
	a.Total += elapsed
	a.Count++
}

func (a *Aggregate) reset() {
	*a = Aggregate{}
}
