package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.SymbolsInsertedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "rlbwt_symbols_inserted_total",
			Help: "Total number of symbols inserted into the online BWT",
		},
	)

	r.BWTLength = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rlbwt_length_symbols",
			Help: "Number of symbols stored in the BWT",
		},
	)

	r.BWTRuns = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rlbwt_runs",
			Help: "Number of runs in the run-length encoded BWT",
		},
	)

	r.StructureBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rlbwt_structure_bytes",
			Help: "Approximate heap bytes held by the index",
		},
	)

	r.SplitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rlbwt_splits_total",
			Help: "Total number of structural splits by kind",
		},
		[]string{"kind"},
	)

	r.BuildDuration = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rlbwt_build_duration_seconds",
			Help: "Wall time of the last completed build",
		},
	)
}
