package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Latency of the recommendation HTTP handlers, by route
	RecommendLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recommend_http_latency_seconds",
		Help:    "Latency of recommendation handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// Total recommendation requests, by route and outcome
	RecommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommend_http_requests_total",
		Help: "Total number of recommendation requests",
	}, []string{"route", "status"})
)

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RecommendLatency,
			RecommendRequests,
		)
	})
}
