package tournamentmetrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tourneybot"

// PrometheusMetrics implements TournamentMetrics with client_golang collectors.
type PrometheusMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	remoteSyncs       *prometheus.CounterVec
	bracketRequests   *prometheus.CounterVec
	bracketDuration   *prometheus.HistogramVec
	handlers          *prometheus.CounterVec
	handlerDuration   *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Tournament service operations by result.",
		}, []string{"service", "operation", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Tournament service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		remoteSyncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bracket",
			Name:      "remote_syncs_total",
			Help:      "Outcomes of mirroring local tournament changes to the bracket provider.",
		}, []string{"operation", "outcome"}),
		bracketRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bracket",
			Name:      "requests_total",
			Help:      "HTTP requests to the bracket provider by endpoint and status.",
		}, []string{"endpoint", "status"}),
		bracketDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bracket",
			Name:      "request_duration_seconds",
			Help:      "Bracket provider request latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		handlers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handler",
			Name:      "messages_total",
			Help:      "Handled messages by handler and result.",
		}, []string{"handler", "result"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "handler",
			Name:      "duration_seconds",
			Help:      "Message handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
	}

	for _, c := range []prometheus.Collector{
		m.operations, m.operationDuration, m.remoteSyncs,
		m.bracketRequests, m.bracketDuration, m.handlers, m.handlerDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register tournament metrics: %w", err)
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "failure").Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRemoteSync(_ context.Context, operation, outcome string) {
	m.remoteSyncs.WithLabelValues(operation, outcome).Inc()
}

func (m *PrometheusMetrics) RecordBracketRequest(_ context.Context, endpoint, status string, duration time.Duration) {
	m.bracketRequests.WithLabelValues(endpoint, status).Inc()
	m.bracketDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "success").Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.handlers.WithLabelValues(handlerName, "failure").Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(_ context.Context, handlerName string, duration time.Duration) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(duration.Seconds())
}
