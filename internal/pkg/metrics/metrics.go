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
		Namespace: "refpoint",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "refpoint",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "refpoint",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Reference point metrics
	PointsSet = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "refpoint",
		Subsystem: "points",
		Name:      "set_total",
		Help:      "Total reference points set, by role and source",
	}, []string{"role", "source"})

	Computations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "refpoint",
		Subsystem: "points",
		Name:      "computations_total",
		Help:      "Total bearing/distance computations, by outcome",
	}, []string{"outcome"})

	PositioningFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "refpoint",
		Subsystem: "positioning",
		Name:      "failures_total",
		Help:      "Total positioning attempts that returned no fix",
	})

	AltitudeDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "refpoint",
		Subsystem: "positioning",
		Name:      "altitude_degraded_total",
		Help:      "Total fixes accepted without the requested altitude",
	})

	PositionRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "refpoint",
		Subsystem: "positioning",
		Name:      "request_duration_seconds",
		Help:      "Duration of positioning requests to the device daemon",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "refpoint",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Sessions currently held in memory",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "refpoint",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	StoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "refpoint",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Total persistence operations, by backend, operation and result",
	}, []string{"backend", "operation", "result"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "refpoint",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "refpoint",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "refpoint",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObserveStore records the result of one persistence call.
func ObserveStore(backend, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StoreOps.WithLabelValues(backend, op, result).Inc()
}

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
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
func UpdateDBPoolMetrics(stat interface{}) {
	// Keeps pgxpool out of this package.
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
