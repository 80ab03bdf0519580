package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	pathScored   = "scored"
	pathFallback = "fallback"
	pathEmpty    = "empty"
)

var (
	BehaviorEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_behavior_events_total",
			Help: "Count of behavior events appended to the in-memory log, by action.",
		},
		[]string{"action"},
	)

	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_results_total",
			Help: "Recommendation requests by the path that produced the result (scored, fallback, empty).",
		},
		[]string{"path"},
	)

	SimilarityIndexEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recommend_similarity_index_entries",
		Help: "Products currently held in the precomputed similarity index.",
	})

	SimilarityIndexRefreshSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommend_similarity_index_refresh_seconds",
		Help:    "Time spent rebuilding the similarity index.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		BehaviorEventsTotal,
		RecommendationsTotal,
		SimilarityIndexEntries,
		SimilarityIndexRefreshSeconds,
	)
}
