package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "binroute",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Placement metrics
	SuggestionRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "placement",
		Name:      "suggestion_requests_total",
		Help:      "Total bin-placement suggestion requests",
	})

	CandidatesEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "placement",
		Name:      "candidates_evaluated_total",
		Help:      "Total route points evaluated for bin placement",
	})

	CandidatesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "placement",
		Name:      "candidates_rejected_total",
		Help:      "Total candidates rejected, by reason",
	}, []string{"reason"})

	// External service metrics
	RoutingRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "binroute",
		Subsystem: "routing",
		Name:      "request_duration_seconds",
		Help:      "Duration of directions API calls",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	RoutingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "routing",
		Name:      "errors_total",
		Help:      "Total directions API failures",
	})

	GeocodeLookups = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "geocoding",
		Name:      "lookups_total",
		Help:      "Total reverse-geocoding lookups",
	})

	GeocodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "geocoding",
		Name:      "errors_total",
		Help:      "Total reverse-geocoding failures",
	})

	// Bin lifecycle metrics
	BinsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "bins",
		Name:      "added_total",
		Help:      "Total bins created",
	})

	BinsMarkedFull = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "binroute",
		Subsystem: "bins",
		Name:      "marked_full_total",
		Help:      "Total bin-full transitions",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "binroute",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
