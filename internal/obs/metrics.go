package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters and latency stats for replay runs.
type Metrics struct {
	rowsEmitted      uint64
	batchesEmitted   uint64
	streamsStarted   uint64
	streamsCompleted uint64
	sourceScans      uint64
	sourceErrors     uint64

	scanLatency  LatencyStats
	batchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	RowsEmitted      uint64
	BatchesEmitted   uint64
	StreamsStarted   uint64
	StreamsCompleted uint64
	SourceScans      uint64
	SourceErrors     uint64
	ScanLatency      LatencySnapshot
	BatchLatency     LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// AddRows records emitted rows.
func (m *Metrics) AddRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.rowsEmitted, uint64(n))
}

// IncBatch records one emitted batch and its assembly latency.
func (m *Metrics) IncBatch(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.batchesEmitted, 1)
	m.batchLatency.Observe(d)
}

// IncStreamStarted records a replay stream construction.
func (m *Metrics) IncStreamStarted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.streamsStarted, 1)
}

// IncStreamCompleted records a fully drained replay stream.
func (m *Metrics) IncStreamCompleted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.streamsCompleted, 1)
}

// ObserveScan records one partition scan and its latency.
func (m *Metrics) ObserveScan(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sourceScans, 1)
	m.scanLatency.Observe(d)
}

// IncSourceError records a failed partition scan.
func (m *Metrics) IncSourceError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sourceErrors, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		RowsEmitted:      atomic.LoadUint64(&m.rowsEmitted),
		BatchesEmitted:   atomic.LoadUint64(&m.batchesEmitted),
		StreamsStarted:   atomic.LoadUint64(&m.streamsStarted),
		StreamsCompleted: atomic.LoadUint64(&m.streamsCompleted),
		SourceScans:      atomic.LoadUint64(&m.sourceScans),
		SourceErrors:     atomic.LoadUint64(&m.sourceErrors),
		ScanLatency:      m.scanLatency.Snapshot(),
		BatchLatency:     m.batchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
