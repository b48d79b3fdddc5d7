package telemetry

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type AppMetrics struct {
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	activeRequests     prometheus.Gauge
	todoItemOperations *prometheus.CounterVec
	databaseOperations *prometheus.CounterVec
	databaseDuration   *prometheus.HistogramVec
	healthStatus       *prometheus.GaugeVec
}

func NewAppMetrics(registry prometheus.Registerer) *AppMetrics {
	metrics := &AppMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_requests",
				Help: "Number of HTTP requests being served",
			},
		),
		todoItemOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todo_item_operations_total",
				Help: "Total number of todo item mutations",
			},
			[]string{"operation"},
		),
		databaseOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_operations_total",
				Help: "Total number of database operations",
			},
			[]string{"operation", "entity", "outcome"},
		),
		databaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "database_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "entity"},
		),
		healthStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "health_check_status",
				Help: "Result of the last health check, 1 when healthy",
			},
			[]string{"check"},
		),
	}

	registry.MustRegister(
		metrics.requestDuration,
		metrics.requestTotal,
		metrics.activeRequests,
		metrics.todoItemOperations,
		metrics.databaseOperations,
		metrics.databaseDuration,
		metrics.healthStatus,
	)

	return metrics
}

func (m *AppMetrics) RecordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)

	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

func (m *AppMetrics) IncrementActiveRequests(ctx context.Context) {
	m.activeRequests.Inc()
}

func (m *AppMetrics) DecrementActiveRequests(ctx context.Context) {
	m.activeRequests.Dec()
}

func (m *AppMetrics) RecordTodoItemOperation(ctx context.Context, operation string) {
	m.todoItemOperations.WithLabelValues(operation).Inc()
}

func (m *AppMetrics) RecordDatabaseOperation(ctx context.Context, operation, entity string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	m.databaseOperations.WithLabelValues(operation, entity, outcome).Inc()
	m.databaseDuration.WithLabelValues(operation, entity).Observe(duration.Seconds())
}

func (m *AppMetrics) RecordHealthCheck(ctx context.Context, check string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1
	}

	m.healthStatus.WithLabelValues(check).Set(value)
}
