// Package metrics provides Prometheus instrumentation for ReplyPilot.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replypilot",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "replypilot",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// GenerationsTotal counts reply generations by outcome
	// (parsed, fallback, failed).
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replypilot",
			Name:      "generations_total",
			Help:      "Total reply generations by outcome.",
		},
		[]string{"outcome"},
	)

	// ProviderCallDuration observes the LLM provider round trip.
	ProviderCallDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "replypilot",
		Name:      "provider_call_duration_seconds",
		Help:      "LLM provider call duration in seconds.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 30},
	})

	// QuotaRejectionsTotal counts requests rejected at the quota check, by tier.
	QuotaRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replypilot",
			Name:      "quota_rejections_total",
			Help:      "Total generation requests rejected for exceeding the monthly quota.",
		},
		[]string{"tier"},
	)

	// TierUpgradesTotal counts completed tier changes by target tier.
	TierUpgradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "replypilot",
			Name:      "tier_upgrades_total",
			Help:      "Total subscription tier changes by target tier.",
		},
		[]string{"tier"},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "replypilot", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "replypilot", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "replypilot", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "replypilot", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationsTotal,
		ProviderCallDuration,
		QuotaRejectionsTotal,
		TierUpgradesTotal,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// StartDBStatsCollector spawns a goroutine that samples sql.DBStats and
// the goroutine count into the gauges until ctx ends.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := db.Stats()
				DBOpenConnections.Set(float64(stats.OpenConnections))
				DBIdleConnections.Set(float64(stats.Idle))
				DBInUseConnections.Set(float64(stats.InUse))
				GoroutineCount.Set(float64(runtime.NumGoroutine()))
			}
		}
	}()
}

// Middleware records request count and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// c.FullPath() is the route pattern, not the raw URL, so label
		// cardinality stays bounded.
		method, route := c.Request.Method, c.FullPath()
		HTTPRequestDuration.WithLabelValues(method, route).
			Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(method, route,
			statusBucket(c.Writer.Status())).Inc()
	}
}

// Handler adapts the Prometheus handler for the /metrics route.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// statusBucket collapses status codes to their class (2xx, 4xx, ...).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
