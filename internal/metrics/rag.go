package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion and generation Prometheus metrics.
var (
	PapersIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paperdex",
			Name:      "papers_ingested_total",
			Help:      "Total number of papers ingested",
		},
	)

	ChunksIngestedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "paperdex",
			Name:      "chunks_ingested_total",
			Help:      "Total number of chunks stored",
		},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperdex",
			Name:      "generation_requests_total",
			Help:      "Total number of LLM generation requests",
		},
		[]string{"model", "status"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paperdex",
			Name:      "generation_duration_seconds",
			Help:      "LLM generation duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)
)

var ragMetricsRegistered bool

// RegisterRAGMetrics registers ingestion and generation metrics. Must be called once from main.
func RegisterRAGMetrics() {
	if ragMetricsRegistered {
		return
	}
	prometheus.MustRegister(PapersIngestedTotal)
	prometheus.MustRegister(ChunksIngestedTotal)
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationDuration)
	ragMetricsRegistered = true
}
