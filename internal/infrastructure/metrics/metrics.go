package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the operator service
type Metrics struct {
	// Session service metrics
	UpstreamCalls    *prometheus.CounterVec
	UpstreamAttempts *prometheus.CounterVec
	UpstreamRetries  *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	// Login metrics
	LoginSteps     *prometheus.CounterVec
	ActiveAttempts prometheus.Gauge

	// Aggregation metrics
	AggregationDuration prometheus.Histogram
	AggregationAccounts prometheus.Histogram
	AccountFailures     prometheus.Counter

	// Kafka metrics
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return DefaultMetrics
}

// NewMetrics creates a Metrics instance registered with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operator_service_upstream_calls_total",
				Help: "Total number of logical session service calls by outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operator_service_upstream_attempts_total",
				Help: "Total number of HTTP attempts against the session service",
			},
			[]string{"endpoint"},
		),
		UpstreamRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operator_service_upstream_retries_total",
				Help: "Total number of retried session service attempts",
			},
			[]string{"endpoint"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "operator_service_upstream_duration_seconds",
				Help:    "Duration of logical session service calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),

		LoginSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operator_service_login_steps_total",
				Help: "Total number of login steps by step and outcome",
			},
			[]string{"step", "outcome"},
		),
		ActiveAttempts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "operator_service_login_attempts_active",
			Help: "Current number of in-flight login attempts",
		}),

		AggregationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "operator_service_aggregation_duration_seconds",
			Help:    "Duration of multi-account conversation fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		AggregationAccounts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "operator_service_aggregation_accounts",
			Help:    "Number of accounts targeted per aggregation",
			Buckets: []float64{1, 2, 4, 8, 16, 32},
		}),
		AccountFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "operator_service_aggregation_account_failures_total",
			Help: "Total number of per-account failures during aggregation",
		}),

		KafkaMessagesProduced: factory.NewCounter(prometheus.CounterOpts{
			Name: "operator_service_kafka_messages_produced_total",
			Help: "Total number of messages produced to Kafka",
		}),
		KafkaProduceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "operator_service_kafka_produce_errors_total",
				Help: "Total number of Kafka produce errors",
			},
			[]string{"error_type"},
		),
	}
}

// RecordUpstreamCall records a finished logical call with its outcome
func (m *Metrics) RecordUpstreamCall(endpoint, outcome string, duration float64) {
	m.UpstreamCalls.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordUpstreamAttempt records a single HTTP attempt; retry marks attempts after the first
func (m *Metrics) RecordUpstreamAttempt(endpoint string, retry bool) {
	m.UpstreamAttempts.WithLabelValues(endpoint).Inc()
	if retry {
		m.UpstreamRetries.WithLabelValues(endpoint).Inc()
	}
}

// RecordLoginStep records the outcome of a login step
func (m *Metrics) RecordLoginStep(step, outcome string) {
	m.LoginSteps.WithLabelValues(step, outcome).Inc()
}

// SetActiveAttempts updates the in-flight login attempts gauge
func (m *Metrics) SetActiveAttempts(count int) {
	m.ActiveAttempts.Set(float64(count))
}

// RecordAggregation records a conversation fan-out
func (m *Metrics) RecordAggregation(accounts, failures int, duration float64) {
	m.AggregationAccounts.Observe(float64(accounts))
	m.AggregationDuration.Observe(duration)
	if failures > 0 {
		m.AccountFailures.Add(float64(failures))
	}
}

// RecordKafkaMessage records a produced Kafka message
func (m *Metrics) RecordKafkaMessage() {
	m.KafkaMessagesProduced.Inc()
}

// RecordKafkaError records a Kafka production error with error type
func (m *Metrics) RecordKafkaError(errorType string) {
	if errorType == "" {
		errorType = "unknown"
	}
	m.KafkaProduceErrors.WithLabelValues(errorType).Inc()
}
