package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the recommendation HTTP handler
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_latency_seconds",
		Help:    "Latency of the personalized recommendations handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of recommendation requests served
	RecommendRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_requests_total",
		Help: "Total number of recommendation requests",
	})

	// How many requests fell back to the popularity ranker because the
	// user had no interaction history
	RecommendColdStarts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommend_cold_starts_total",
		Help: "Recommendation requests served by the cold-start fallback",
	})

	// Items emitted per algorithm, before blending
	RecommendItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_items_total",
		Help: "Recommendation items produced, labelled by algorithm",
	}, []string{"algorithm"})
)

func Init() {
	prometheus.MustRegister(
		RecommendLatency,
		RecommendRequests,
		RecommendColdStarts,
		RecommendItemsTotal,
	)
}
