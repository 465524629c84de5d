package metrics

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/prometheus/common/expfmt"
)

// Nil receivers are allowed everywhere below so callers can hold an
// optional *Registry without guarding each call.

// RecordInsert records one symbol inserted into the BWT
func (r *Registry) RecordInsert() {
	if r == nil {
		return
	}
	r.SymbolsInsertedTotal.Inc()
}

// RecordSplits adds structural split counts by kind ("block" or "node")
func (r *Registry) RecordSplits(kind string, n uint64) {
	if r == nil || n == 0 {
		return
	}
	r.SplitsTotal.WithLabelValues(kind).Add(float64(n))
}

// UpdateStructure publishes the current size of the index
func (r *Registry) UpdateStructure(length, runs, bytes uint64) {
	if r == nil {
		return
	}
	r.BWTLength.Set(float64(length))
	r.BWTRuns.Set(float64(runs))
	r.StructureBytes.Set(float64(bytes))
}

// RecordBuild records the duration of a completed build
func (r *Registry) RecordBuild(duration time.Duration) {
	if r == nil {
		return
	}
	r.BuildDuration.Set(duration.Seconds())
}

// RecordFactor records one emitted factor
func (r *Registry) RecordFactor(length uint64) {
	if r == nil {
		return
	}
	r.FactorsTotal.Inc()
	r.FactorLength.Observe(float64(length))
}

// RecordOutput records encoded factor bytes written
func (r *Registry) RecordOutput(n int64) {
	if r == nil {
		return
	}
	r.OutputBytesTotal.Add(float64(n))
}

// RecordInput records consumed input bytes
func (r *Registry) RecordInput(n int) {
	if r == nil {
		return
	}
	r.InputBytesTotal.Add(float64(n))
}

// RecordLFMapFailure records an LF-mapping probe that ended a phrase
func (r *Registry) RecordLFMapFailure() {
	if r == nil {
		return
	}
	r.LFMapFailuresTotal.Inc()
}

// UpdateSystemMetrics samples uptime and Go memory statistics
func (r *Registry) UpdateSystemMetrics() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.MemoryAllocBytes.Set(float64(ms.Alloc))
	r.MemorySysBytes.Set(float64(ms.Sys))
}

// WriteText writes every metric in the Prometheus text exposition format
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
