// ABOUTME: Prometheus metrics for the docsearch service
// ABOUTME: HTTP, search, snippet rendering, store, and OCR instrumentation

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for docsearch
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Store metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	DocumentsTotal         prometheus.Gauge

	// Search metrics
	SearchQueriesTotal     prometheus.Counter
	SearchResultsTotal     prometheus.Counter
	SearchDuration         prometheus.Histogram
	SnippetsGeneratedTotal prometheus.Counter

	// Render metrics
	RenderOperationsTotal *prometheus.CounterVec

	// OCR metrics
	OCRJobsTotal  *prometheus.CounterVec
	OCRConfidence prometheus.Histogram

	// Server metrics
	ServerUptimeSeconds prometheus.Gauge
	ServerStartTime     time.Time
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		ServerStartTime: time.Now(),
	}

	// HTTP request metrics
	m.HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsearch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docsearch_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Store metrics
	m.StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "status"},
	)

	m.StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsearch_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	m.DocumentsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docsearch_documents_total",
			Help: "Total number of documents in the store",
		},
	)

	// Search metrics
	m.SearchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docsearch_search_queries_total",
			Help: "Total number of search queries",
		},
	)

	m.SearchResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docsearch_search_results_total",
			Help: "Total number of search results returned",
		},
	)

	m.SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docsearch_search_duration_seconds",
			Help:    "Duration of search queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.SnippetsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docsearch_snippets_generated_total",
			Help: "Total number of search snippets generated",
		},
	)

	// Render metrics
	m.RenderOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_render_operations_total",
			Help: "Total number of snippet render operations",
		},
		[]string{"view_mode"},
	)

	// OCR metrics
	m.OCRJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsearch_ocr_jobs_total",
			Help: "Total number of OCR jobs",
		},
		[]string{"status"},
	)

	m.OCRConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docsearch_ocr_confidence",
			Help:    "Distribution of mean OCR confidence per document",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)

	// Server metrics
	m.ServerUptimeSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docsearch_server_uptime_seconds",
			Help: "Server uptime in seconds",
		},
	)

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime periodically updates the server uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.ServerUptimeSeconds.Set(time.Since(m.ServerStartTime).Seconds())
	}
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordStoreOperation records a document store operation
func (m *Metrics) RecordStoreOperation(operation, status string, duration time.Duration) {
	m.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	m.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordSearch records a search query with its result and snippet counts
func (m *Metrics) RecordSearch(results, snippets int, duration time.Duration) {
	m.SearchQueriesTotal.Inc()
	m.SearchResultsTotal.Add(float64(results))
	m.SnippetsGeneratedTotal.Add(float64(snippets))
	m.SearchDuration.Observe(duration.Seconds())
}

// RecordRender records a snippet render operation
func (m *Metrics) RecordRender(viewMode string) {
	m.RenderOperationsTotal.WithLabelValues(viewMode).Inc()
}

// RecordOCRJob records an OCR job outcome. Confidence is only observed for
// completed jobs
func (m *Metrics) RecordOCRJob(status string, confidence float64) {
	m.OCRJobsTotal.WithLabelValues(status).Inc()
	if status == "completed" {
		m.OCRConfidence.Observe(confidence)
	}
}

// UpdateDocumentCount updates the stored document gauge
func (m *Metrics) UpdateDocumentCount(count int) {
	m.DocumentsTotal.Set(float64(count))
}
