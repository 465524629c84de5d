package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for one process
type Registry struct {
	// Build Metrics (online RLBWT)
	SymbolsInsertedTotal prometheus.Counter
	BWTLength            prometheus.Gauge
	BWTRuns              prometheus.Gauge
	StructureBytes       prometheus.Gauge
	SplitsTotal          *prometheus.CounterVec
	BuildDuration        prometheus.Gauge

	// Factor Metrics (online LZ77)
	FactorsTotal       prometheus.Counter
	FactorLength       prometheus.Histogram
	InputBytesTotal    prometheus.Counter
	OutputBytesTotal   prometheus.Counter
	LFMapFailuresTotal prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.Mutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initBuildMetrics()
	r.initFactorMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
