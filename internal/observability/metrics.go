// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// API metrics
	AnalysisRequests *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	// Analysis metrics
	TradesAnalyzed     prometheus.Counter
	ValidationFailures prometheus.Counter
	AnalysisErrors     *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trade_analytics"
	}

	return &Metrics{
		AnalysisRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of analysis requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		AnalysisDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Analysis request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		TradesAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "trades_analyzed_total",
			Help:      "Total number of trade records analyzed",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "validation_failures_total",
			Help:      "Total number of rejected trade payloads",
		}),
		AnalysisErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "errors_total",
			Help:      "Total number of failed analysis computations by analyzer",
		}, []string{"analyzer"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAnalysis records one analysis request.
func RecordAnalysis(endpoint, status string, durationSeconds float64) {
	DefaultMetrics.AnalysisRequests.WithLabelValues(endpoint, status).Inc()
	DefaultMetrics.AnalysisDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordTradesAnalyzed adds to the analyzed-trades counter.
func RecordTradesAnalyzed(n int) {
	DefaultMetrics.TradesAnalyzed.Add(float64(n))
}

// RecordValidationFailure increments the rejected-payload counter.
func RecordValidationFailure() {
	DefaultMetrics.ValidationFailures.Inc()
}

// RecordAnalysisError records a failed computation for one analyzer.
func RecordAnalysisError(analyzer string) {
	DefaultMetrics.AnalysisErrors.WithLabelValues(analyzer).Inc()
}
