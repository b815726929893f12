package observability

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application's Prometheus metrics.
type Metrics struct {
	// Registry owns these metrics; the /metrics endpoint serves it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestsTotal    *prometheus.CounterVec
	expensesCreated  prometheus.Counter
	paymentsRecorded prometheus.Counter
	returnsCreated   prometheus.Counter
}

// NewMetrics creates a private registry with all application metrics.
// A private registry avoids duplicate-collector panics when NewMetrics
// runs more than once, e.g. in tests.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "splitnest_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splitnest_requests_total",
				Help: "Total HTTP requests processed.",
			},
			[]string{"method", "status"},
		),
		expensesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "splitnest_expenses_created_total",
				Help: "Total expenses created.",
			},
		),
		paymentsRecorded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "splitnest_payments_recorded_total",
				Help: "Total payments recorded against shares.",
			},
		),
		returnsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "splitnest_overpayment_returns_total",
				Help: "Total reverse shares created by overpayments.",
			},
		),
	}
}

// IncrExpensesCreated increments the expenses-created counter.
func (m *Metrics) IncrExpensesCreated() {
	m.expensesCreated.Inc()
}

// IncrPaymentsRecorded increments the payments-recorded counter.
func (m *Metrics) IncrPaymentsRecorded() {
	m.paymentsRecorded.Inc()
}

// IncrReturnsCreated increments the overpayment-returns counter.
func (m *Metrics) IncrReturnsCreated() {
	m.returnsCreated.Inc()
}

// HTTPMiddleware records request counts and durations.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}
