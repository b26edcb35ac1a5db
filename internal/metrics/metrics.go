// Package metrics exposes Prometheus collectors for the web server and the
// image pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	imagePipelineTotal         *prometheus.CounterVec
	imageDownloadsTotal        *prometheus.CounterVec
	imageQueueDepth            prometheus.Gauge
	imageQueueDroppedTotal     prometheus.Counter
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		imagePipelineTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wine_image_pipeline_total",
				Help: "Total number of image pipeline runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		imageDownloadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wine_image_downloads_total",
				Help: "Total number of candidate image downloads, labeled by result.",
			},
			[]string{"result"},
		)

		imageQueueDepth = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "wine_image_queue_depth",
				Help: "Number of wines waiting for the image worker.",
			},
		)

		imageQueueDroppedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "wine_image_queue_dropped_total",
				Help: "Total number of wines dropped because the image queue was full.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePipeline counts one finished pipeline run.
func ObservePipeline(outcome string) {
	Init()
	imagePipelineTotal.WithLabelValues(outcome).Inc()
}

// ObserveDownload counts one candidate download attempt.
func ObserveDownload(result string) {
	Init()
	imageDownloadsTotal.WithLabelValues(result).Inc()
}

// SetQueueDepth records the number of queued wines.
func SetQueueDepth(n int) {
	Init()
	imageQueueDepth.Set(float64(n))
}

// ObserveQueueDrop counts a wine rejected by a full queue.
func ObserveQueueDrop() {
	Init()
	imageQueueDroppedTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latencies by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ObserveHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
