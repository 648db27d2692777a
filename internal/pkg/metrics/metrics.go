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
		Namespace: "seatemp",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seatemp",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seatemp",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Stream metrics, labelled by transport (sse, ws)
	StreamSessionsActive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "seatemp",
		Subsystem: "stream",
		Name:      "sessions_active",
		Help:      "Sea temperature streams currently open",
	}, []string{"transport"})

	StreamEventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seatemp",
		Subsystem: "stream",
		Name:      "events_sent_total",
		Help:      "Total batch events delivered to clients",
	}, []string{"transport"})

	StreamPointsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seatemp",
		Subsystem: "stream",
		Name:      "points_sent_total",
		Help:      "Total sea temperature points delivered to clients",
	}, []string{"transport"})

	StreamBrokenPipes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seatemp",
		Subsystem: "stream",
		Name:      "broken_pipes_total",
		Help:      "Streams cut short because the client went away",
	}, []string{"transport"})

	StreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seatemp",
		Subsystem: "stream",
		Name:      "errors_total",
		Help:      "Streams ended by a server-side error",
	}, []string{"transport", "reason"})

	StreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seatemp",
		Subsystem: "stream",
		Name:      "duration_seconds",
		Help:      "Wall time from stream open to close",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	}, []string{"transport"})

	// Ingestion
	ReportsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seatemp",
		Subsystem: "ingest",
		Name:      "reports_total",
		Help:      "Total weather reports written to the store",
	}, []string{"source"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seatemp",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seatemp",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "seatemp",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "seatemp",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "seatemp",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})

	DBPoolAcquireDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "seatemp",
		Subsystem: "db",
		Name:      "pool_acquire_duration_seconds",
		Help:      "Cumulative time spent acquiring connections",
	})

	StoreBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "seatemp",
		Subsystem: "db",
		Name:      "breaker_state",
		Help:      "Store circuit breaker state (0=closed, 1=half-open, 2=open)",
	})
)

// Middleware records request metrics. Streamed bodies are not measured for
// size; reading them here would drain the stream.
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
		if !c.Response().IsBodyStream() {
			httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))
		}

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	AcquireDuration() time.Duration
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
	DBPoolAcquireDuration.Set(s.AcquireDuration().Seconds())
}
