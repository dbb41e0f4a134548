// metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetmgt_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assetmgt_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	lifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetmgt_lifecycle_transitions_total",
		Help: "Count of asset lifecycle transitions by action and result",
	}, []string{"action", "result"})

	assetsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assetmgt_assets_in_use",
		Help: "Number of assets currently assigned",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// ObserveTransition records a lifecycle transition attempt.
func ObserveTransition(action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	lifecycleTransitions.WithLabelValues(action, result).Inc()
}

// SetAssetsInUse updates the assigned-assets gauge.
func SetAssetsInUse(n int64) {
	assetsInUse.Set(float64(n))
}
