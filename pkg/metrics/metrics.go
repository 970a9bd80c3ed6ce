package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all service metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Kafka metrics
	KafkaEventsPublished *prometheus.CounterVec

	// Business metrics
	TransfersRequested   prometheus.Counter
	TransfersDecided     *prometheus.CounterVec
	StockQuantityMoved   prometheus.Counter
	UsagesRecorded       prometheus.Counter
	StockAdditions       prometheus.Counter
	ValuationMisses      prometheus.Counter
	NotificationFailures prometheus.Counter
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "backoffice",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"service", "collection", "operation", "status"},
	)

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "collection", "operation"},
	)

	m.KafkaEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "kafka_events_published_total",
			Help:      "Total number of Kafka events published",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.TransfersRequested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "stock_transfers_requested_total",
			Help:        "Total number of stock transfer requests created",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.TransfersDecided = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "stock_transfers_decided_total",
			Help:      "Total number of stock transfers decided, by outcome",
		},
		[]string{"service", "outcome"},
	)

	m.StockQuantityMoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "stock_quantity_moved_total",
			Help:        "Total quantity moved by approved transfers",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.UsagesRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "stock_usages_recorded_total",
			Help:        "Total number of stock usage records created",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.StockAdditions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "stock_additions_total",
			Help:        "Total number of stock addition operations",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.ValuationMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "stock_valuation_misses_total",
			Help:        "Transfers valued at zero because no purchase history matched",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.NotificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "notification_delivery_failures_total",
			Help:        "Notification writes that failed after the ledger operation committed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.KafkaEventsPublished,
		m.TransfersRequested,
		m.TransfersDecided,
		m.StockQuantityMoved,
		m.UsagesRecorded,
		m.StockAdditions,
		m.ValuationMisses,
		m.NotificationFailures,
	)

	return m
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordMongoDBOperation records a MongoDB operation
func (m *Metrics) RecordMongoDBOperation(collection, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, status).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordKafkaEventPublished records a Kafka publish attempt
func (m *Metrics) RecordKafkaEventPublished(topic, eventType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, status).Inc()
}

// RecordTransferRequested records a transfer request creation
func (m *Metrics) RecordTransferRequested() {
	m.TransfersRequested.Inc()
}

// RecordTransferDecided records a transfer decision by outcome
func (m *Metrics) RecordTransferDecided(outcome string) {
	m.TransfersDecided.WithLabelValues(m.serviceName, outcome).Inc()
}

// RecordStockMoved records quantity moved by an approved transfer
func (m *Metrics) RecordStockMoved(quantity int) {
	m.StockQuantityMoved.Add(float64(quantity))
}

// RecordUsage records a usage event
func (m *Metrics) RecordUsage() {
	m.UsagesRecorded.Inc()
}

// RecordStockAddition records a stock addition
func (m *Metrics) RecordStockAddition() {
	m.StockAdditions.Inc()
}

// RecordValuationMiss records a zero-price valuation
func (m *Metrics) RecordValuationMiss() {
	m.ValuationMisses.Inc()
}

// RecordNotificationFailure records a failed notification write
func (m *Metrics) RecordNotificationFailure() {
	m.NotificationFailures.Inc()
}
