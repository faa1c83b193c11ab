package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the registry exposed on /api/metrics.
var Registry = prometheus.NewRegistry()

var (
	// Custom histogram buckets covering everything from fast local rejections
	// to completion calls that run close to their 20-25s deadlines.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34}

	// HTTP Metrics
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Completion gateway metrics
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_client_request_duration_seconds",
			Help:    "Chat-completion call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"model"},
	)

	LLMRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_client_request_total",
			Help: "Total number of chat-completion calls",
		},
		[]string{"model", "status"},
	)

	// Business Metrics
	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcify_generation_requests_total",
			Help: "Total number of generation requests",
		},
		[]string{"flow", "status"}, // status: success, fallback, invalid_inputs, timeout, upstream_error
	)

	FallbacksServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcify_generation_fallbacks_total",
			Help: "Total number of fallback results substituted for model output",
		},
		[]string{"flow", "reason"}, // reason: parse_error, schema_mismatch
	)

	RateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcify_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the fixed-window limiter",
		},
		[]string{"route"},
	)

	RateLimitStoreFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "launcify_rate_limit_store_fallbacks_total",
			Help: "Times the shared counter store was unreachable and the local store answered instead",
		},
	)

	LeadWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "launcify_lead_writes_total",
			Help: "Total number of lead persistence attempts",
		},
		[]string{"flow", "status"}, // status: success, error, skipped
	)

	// Infrastructure Metrics
	GoRoutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// Init registers all collectors on the registry. Call once at startup.
func Init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestDuration,
		HTTPRequestTotal,
		ActiveRequests,
		LLMRequestDuration,
		LLMRequestTotal,
		GenerationRequests,
		FallbacksServed,
		RateLimitRejections,
		RateLimitStoreFallbacks,
		LeadWrites,
		GoRoutines,
		HeapAlloc,
	)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
