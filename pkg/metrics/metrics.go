// Package metrics содержит Prometheus-метрики сервиса.
// Все Record-методы безопасны для nil-получателя: при выключенных метриках
// можно передавать (*Metrics)(nil).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор метрик сервиса
type Metrics struct {
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal     *prometheus.CounterVec
	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	LockOperationsTotal *prometheus.CounterVec
	SweptSlotsTotal     *prometheus.CounterVec
	PriceDecisionsTotal *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном registerer
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		}, []string{"service", "operation", "status"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),

		DBOpenConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections to the database",
		}, []string{"service"}),

		DBInUseConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),

		DBIdleConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),

		DBWaitCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		LockOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slot_lock_operations_total",
			Help: "Slot lock operations by outcome",
		}, []string{"service", "operation", "outcome"}),

		SweptSlotsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "slot_lock_swept_total",
			Help: "Expired slot locks reset to available by the sweeper",
		}, []string{"service"}),

		PriceDecisionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "price_gate_decisions_total",
			Help: "Price gate decisions by outcome",
		}, []string{"service", "decision"}),
	}
}

// ServiceName имя сервиса, которым помечаются метрики
func (m *Metrics) ServiceName() string {
	if m == nil {
		return ""
	}
	return m.serviceName
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueriesTotal.WithLabelValues(m.serviceName, operation, status).Inc()
	m.DBQueryDuration.WithLabelValues(m.serviceName, operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordDBPoolStats(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.DBOpenConnections.WithLabelValues(m.serviceName).Set(float64(open))
	m.DBInUseConnections.WithLabelValues(m.serviceName).Set(float64(inUse))
	m.DBIdleConnections.WithLabelValues(m.serviceName).Set(float64(idle))
	m.DBWaitCount.WithLabelValues(m.serviceName).Set(float64(waitCount))
}

// RecordLockOperation operation: acquire/release/confirm; outcome: granted/denied/ok/noop/error
func (m *Metrics) RecordLockOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.LockOperationsTotal.WithLabelValues(m.serviceName, operation, outcome).Inc()
}

func (m *Metrics) RecordSweep(count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.SweptSlotsTotal.WithLabelValues(m.serviceName).Add(float64(count))
}

func (m *Metrics) RecordPriceDecision(decision string) {
	if m == nil {
		return
	}
	m.PriceDecisionsTotal.WithLabelValues(m.serviceName, decision).Inc()
}
