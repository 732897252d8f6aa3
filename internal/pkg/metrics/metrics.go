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
		Namespace: "minarah",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "minarah",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "minarah",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Routing metrics
	RouteSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minarah",
		Subsystem: "routing",
		Name:      "searches_total",
		Help:      "Route searches by outcome",
	}, []string{"status"})

	RouteExpansions = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "minarah",
		Subsystem: "routing",
		Name:      "expansions",
		Help:      "Nodes expanded per route search",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	})

	RouteSearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "minarah",
		Subsystem: "routing",
		Name:      "search_duration_seconds",
		Help:      "Route search latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// Dispatch metrics
	SOSTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minarah",
		Subsystem: "dispatch",
		Name:      "transitions_total",
		Help:      "SOS lifecycle transitions that changed state",
	}, []string{"event"})

	FloodPredictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minarah",
		Subsystem: "prediction",
		Name:      "predictions_total",
		Help:      "Flood predictions served by outcome",
	}, []string{"severity"})

	// Broadcast hub metrics
	HubSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "minarah",
		Subsystem: "hub",
		Name:      "subscribers",
		Help:      "Current number of live broadcast subscribers",
	})

	HubDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "minarah",
		Subsystem: "hub",
		Name:      "deliveries_total",
		Help:      "Events queued to subscribers",
	})

	HubDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minarah",
		Subsystem: "hub",
		Name:      "dropped_subscribers_total",
		Help:      "Subscribers removed after a failed delivery",
	}, []string{"reason"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minarah",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minarah",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "minarah",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "minarah",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "minarah",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
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
// The argument is a *pgxpool.Stat; it is taken as an interface so this
// package does not import pgx.
func UpdateDBPoolMetrics(stat interface{}) {
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
