package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.SymbolsInsertedTotal == nil {
		t.Error("SymbolsInsertedTotal not initialized")
	}
	if r.FactorLength == nil {
		t.Error("FactorLength not initialized")
	}
	if r.MemoryAllocBytes == nil {
		t.Error("MemoryAllocBytes not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestRecordInsert(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < 5; i++ {
		r.RecordInsert()
	}

	if got := counterValue(t, r.SymbolsInsertedTotal); got != 5 {
		t.Errorf("SymbolsInsertedTotal = %v, want 5", got)
	}
}

func TestRecordSplits(t *testing.T) {
	r := NewRegistry()

	r.RecordSplits("block", 3)
	r.RecordSplits("block", 2)
	r.RecordSplits("node", 0)

	counter, err := r.SplitsTotal.GetMetricWithLabelValues("block")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := counterValue(t, counter); got != 5 {
		t.Errorf("block splits = %v, want 5", got)
	}
}

func TestUpdateStructure(t *testing.T) {
	r := NewRegistry()

	r.UpdateStructure(100, 12, 4096)

	if got := gaugeValue(t, r.BWTLength); got != 100 {
		t.Errorf("BWTLength = %v, want 100", got)
	}
	if got := gaugeValue(t, r.BWTRuns); got != 12 {
		t.Errorf("BWTRuns = %v, want 12", got)
	}
	if got := gaugeValue(t, r.StructureBytes); got != 4096 {
		t.Errorf("StructureBytes = %v, want 4096", got)
	}
}

func TestRecordFactor(t *testing.T) {
	r := NewRegistry()

	r.RecordFactor(0)
	r.RecordFactor(40)
	r.RecordOutput(34)
	r.RecordInput(41)

	if got := counterValue(t, r.FactorsTotal); got != 2 {
		t.Errorf("FactorsTotal = %v, want 2", got)
	}
	if got := counterValue(t, r.OutputBytesTotal); got != 34 {
		t.Errorf("OutputBytesTotal = %v, want 34", got)
	}
	if got := counterValue(t, r.InputBytesTotal); got != 41 {
		t.Errorf("InputBytesTotal = %v, want 41", got)
	}

	var metric dto.Metric
	if err := r.FactorLength.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("FactorLength sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
	if metric.Histogram.GetSampleSum() != 40 {
		t.Errorf("FactorLength sample sum = %v, want 40", metric.Histogram.GetSampleSum())
	}
}

func TestRecordBuild(t *testing.T) {
	r := NewRegistry()
	r.RecordBuild(1500 * time.Millisecond)

	if got := gaugeValue(t, r.BuildDuration); got != 1.5 {
		t.Errorf("BuildDuration = %v, want 1.5", got)
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateSystemMetrics()

	if got := gaugeValue(t, r.MemoryAllocBytes); got <= 0 {
		t.Errorf("MemoryAllocBytes = %v, want > 0", got)
	}
	if got := gaugeValue(t, r.UptimeSeconds); got < 0 {
		t.Errorf("UptimeSeconds = %v, want >= 0", got)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry

	// None of these may panic.
	r.RecordInsert()
	r.RecordSplits("block", 1)
	r.UpdateStructure(1, 1, 1)
	r.RecordBuild(time.Second)
	r.RecordFactor(1)
	r.RecordOutput(1)
	r.RecordInput(1)
	r.RecordLFMapFailure()
	r.UpdateSystemMetrics()
}

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.RecordInsert()
	r.RecordFactor(3)

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	out := buf.String()
	for _, name := range []string{
		"rlbwt_symbols_inserted_total 1",
		"lz77_factors_total 1",
		"# TYPE lz77_factor_length histogram",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("exposition missing %q", name)
		}
	}
}
