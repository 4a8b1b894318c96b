// Package metrics exposes the prometheus collectors of the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)

	DomainOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_operations_total",
			Help: "Total number of domain operations",
		},
		[]string{"resource", "operation"},
	)

	CalendlyEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendly_events_total",
			Help: "Total number of received Calendly webhook events",
		},
		[]string{"kind", "synced"},
	)

	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sign_ins_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"status"}, // success, failure
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // db, auth, validation, internal
	)
)

// Middleware records request count and latency per route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			ActiveRequests.Inc()
			defer ActiveRequests.Dec()

			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}
			method := ctx.Request().Method
			path := ctx.Path() // route pattern keeps label cardinality bounded

			HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the default registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TrackDBOperation starts a timer observed into DBOperationDuration.
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

func TrackCache(result string) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
}

func TrackOperation(resource, operation string) {
	DomainOperationsTotal.WithLabelValues(resource, operation).Inc()
}

func TrackCalendlyEvent(kind string, synced bool) {
	CalendlyEventsTotal.WithLabelValues(kind, strconv.FormatBool(synced)).Inc()
}

func TrackSignIn(status string) {
	SignInsTotal.WithLabelValues(status).Inc()
}

func TrackError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}
