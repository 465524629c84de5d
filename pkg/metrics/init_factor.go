package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initFactorMetrics() {
	r.FactorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lz77_factors_total",
			Help: "Total number of LZ77 factors emitted",
		},
	)

	r.FactorLength = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lz77_factor_length",
			Help:    "Copy length of emitted LZ77 factors",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	r.InputBytesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lz77_input_bytes_total",
			Help: "Total number of input bytes consumed by the factorizer",
		},
	)

	r.OutputBytesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lz77_output_bytes_total",
			Help: "Total number of encoded factor bytes written",
		},
	)

	r.LFMapFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lz77_lfmap_failures_total",
			Help: "Number of LF-mapping probes that ended a phrase",
		},
	)
}
