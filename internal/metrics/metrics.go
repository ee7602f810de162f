package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "tutorhub_admin"
)

var (
	// Backend Metrics
	BackendRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Count of requests sent to the marketplace backend.",
	}, []string{"endpoint", "status"})

	BackendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of requests sent to the marketplace backend.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Moderation Metrics
	ModerationActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_actions_total",
		Help:      "Count of moderation actions by outcome.",
	}, []string{"action", "outcome"})

	CollectionLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collection_loads_total",
		Help:      "Count of dashboard collection loads by outcome.",
	}, []string{"collection", "outcome"})
)

// ObserveBackendRequest records one backend round trip. A zero status means the
// request never produced a response.
func ObserveBackendRequest(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(endpoint, label).Inc()
	BackendRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func ObserveModerationAction(action string, err error) {
	ModerationActionsTotal.WithLabelValues(action, outcome(err)).Inc()
}

func ObserveCollectionLoad(collection string, err error) {
	CollectionLoadsTotal.WithLabelValues(collection, outcome(err)).Inc()
}
