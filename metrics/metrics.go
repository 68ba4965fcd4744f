// Package metrics provides Prometheus metrics for the inbox
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the inbox
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ingestion metrics
	MessagesIngestedTotal    *prometheus.CounterVec
	ConversationsOpenedTotal *prometheus.CounterVec
	IngestFailuresTotal      *prometheus.CounterVec
	TaggingTotal             *prometheus.CounterVec

	// Delivery metrics
	DeliveriesTotal *prometheus.CounterVec

	// Analytics metrics
	DashboardDuration prometheus.Histogram
}

// NewMetrics creates the metrics on a private registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{Registry: reg}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inbox_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.MessagesIngestedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_messages_ingested_total",
			Help: "Total number of messages recorded",
		},
		[]string{"channel", "direction"},
	)

	m.ConversationsOpenedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_conversations_opened_total",
			Help: "Total number of conversations opened",
		},
		[]string{"channel"},
	)

	m.IngestFailuresTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_ingest_failures_total",
			Help: "Total number of rejected or failed ingestions",
		},
		[]string{"reason"},
	)

	m.TaggingTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_tagging_total",
			Help: "Total number of message tagging attempts",
		},
		[]string{"status"},
	)

	m.DeliveriesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbox_deliveries_total",
			Help: "Total number of outgoing delivery attempts",
		},
		[]string{"channel", "status"},
	)

	m.DashboardDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inbox_dashboard_duration_seconds",
			Help:    "Duration of dashboard computations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	return m
}

// RecordHTTPRequest records a served request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordMessage records an ingested message
func (m *Metrics) RecordMessage(channel, direction string, opened bool) {
	m.MessagesIngestedTotal.WithLabelValues(channel, direction).Inc()
	if opened {
		m.ConversationsOpenedTotal.WithLabelValues(channel).Inc()
	}
}

func (m *Metrics) RecordIngestFailure(reason string) {
	m.IngestFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordTagging(status string) {
	m.TaggingTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordDelivery(channel string, success bool) {
	status := "failed"
	if success {
		status = "sent"
	}
	m.DeliveriesTotal.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) ObserveDashboard(duration time.Duration) {
	m.DashboardDuration.Observe(duration.Seconds())
}
