package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ClientMetrics holds the collectors of the wallet API client
type ClientMetrics struct {
	// Requests counts wallet API calls by operation and outcome
	Requests *prometheus.CounterVec
	// Latency records wallet API call latency by operation
	Latency *prometheus.HistogramVec
}

// NewClientMetrics creates the client collectors and registers them on reg.
func NewClientMetrics(reg prometheus.Registerer) (*ClientMetrics, error) {
	m := &ClientMetrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_client_requests_total",
				Help: "Total number of wallet API requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_client_request_duration_seconds",
				Help:    "Latency in seconds of wallet API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{m.Requests, m.Latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one finished request. A nil receiver is a no-op.
func (m *ClientMetrics) Observe(operation string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	m.Requests.WithLabelValues(operation, outcome).Inc()
	m.Latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}
