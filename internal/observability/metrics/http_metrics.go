package metrics

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ErrorReasonNotFound        = "not_found"
	ErrorReasonUniqueViolation = "unique_violation"
	ErrorReasonDB              = "db"
	ErrorReasonUnknown         = "unknown"
)

// HTTPMetrics holds the Prometheus instruments scraped on /metrics.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP instruments on the default registerer.
func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	return newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "rentaldocs"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rentaldocs_http_requests_total",
		Help:        "HTTP requests by route and status.",
		ConstLabels: constLabels,
	}, []string{"method", "route", "status_code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "rentaldocs_http_request_duration_seconds",
		Help:        "HTTP latency; previews dominate the upper buckets.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"method", "route"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "rentaldocs_http_errors_total",
		Help:        "HTTP handler errors by classification.",
		ConstLabels: constLabels,
	}, []string{"route", "reason"})

	requests = registerOrExisting(registerer, requests)
	duration = registerOrExisting(registerer, duration)
	errs = registerOrExisting(registerer, errs)

	return &HTTPMetrics{requests: requests, duration: duration, errors: errs}
}

func registerOrExisting[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return collector
}

// Middleware observes every request handled by the engine.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := strings.ToUpper(c.Request.Method)
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if last := c.Errors.Last(); last != nil {
			m.errors.WithLabelValues(route, ClassifyError(last.Err)).Inc()
		}
	}
}

// ClassifyError maps storage errors to a low-cardinality reason.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ErrorReasonUnknown
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorReasonNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), hasPGCode(err, "23505"):
		return ErrorReasonUniqueViolation
	case isDBError(err):
		return ErrorReasonDB
	default:
		return ErrorReasonUnknown
	}
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isDBError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}
	return errors.Is(err, gorm.ErrInvalidTransaction) || errors.Is(err, gorm.ErrInvalidDB)
}
