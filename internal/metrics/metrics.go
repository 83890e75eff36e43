package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presswire_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "presswire_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presswire_generations_total",
			Help: "Total number of comment generation requests.",
		},
		[]string{"status"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "presswire_generation_duration_seconds",
			Help:    "End to end comment generation duration in seconds.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "presswire_stage_duration_seconds",
			Help:    "Per stage duration of the generation workflow.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)

	StageDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presswire_stage_degraded_total",
			Help: "Workflow stages that fell back to degraded output.",
		},
		[]string{"stage"},
	)

	EvaluationScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "presswire_evaluation_score",
			Help:    "Judge scores per criterion.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"criterion"},
	)

	RetrievedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presswire_retrieved_documents_total",
			Help: "Documents retrieved per augmentation source.",
		},
		[]string{"source"},
	)

	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "presswire_llm_calls_total",
			Help: "Total LLM API calls.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationsTotal,
		GenerationDuration,
		StageDuration,
		StageDegradedTotal,
		EvaluationScore,
		RetrievedDocumentsTotal,
		LLMCallsTotal,
	)
}
