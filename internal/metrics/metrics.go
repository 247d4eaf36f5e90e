// Package metrics exposes Prometheus counters for the HTTP surface and the
// domain events worth alerting on (reservations placed, checkouts
// confirmed, provider failures).
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tabegoro"

var (
	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API responses with status >= 400",
		},
		[]string{"method", "path", "status"},
	)

	ReservationsCreatedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Total number of reservations placed",
	})

	CheckoutsConfirmedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_confirmed_total",
		Help:      "Total number of subscription checkouts confirmed",
	})

	ProviderErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_provider_errors_total",
			Help:      "Total number of failed payment provider calls",
		},
		[]string{"operation"},
	)
)

// Middleware tracks per-request duration and error counts.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			labels := prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}
			RequestDurationHistogram.With(labels).Observe(time.Since(start).Seconds())
			if c.Response().Status >= 400 {
				APIErrorCounter.With(labels).Inc()
			}
			return err
		}
	}
}

// HandlerFunc serves the /metrics scrape endpoint.
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
