package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "library"

// Metrics holds the HTTP and circulation collectors of one process.
type Metrics struct {
	gatherer prometheus.Gatherer

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	loansCreated         *prometheus.CounterVec
	loansDenied          *prometheus.CounterVec
	loansReturned        *prometheus.CounterVec
	loansRenewed         prometheus.Counter
	finesAssessed        prometheus.Counter
	fineAmount           prometheus.Counter
	finesPaid            prometheus.Counter
	reservationsPromoted prometheus.Counter
	reservationsExpired  prometheus.Counter
}

var _ ports.CirculationMetrics = (*Metrics)(nil)

// New registers every collector on reg and serves reg from Handler.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		loansCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_created_total",
			Help:      "Loans created by borrower role.",
		}, []string{"role"}),
		loansDenied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_denied_total",
			Help:      "Loan attempts refused by the circulation rules, by reason.",
		}, []string{"reason"}),
		loansReturned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_returned_total",
			Help:      "Returned loans, split by whether they were late.",
		}, []string{"late"}),
		loansRenewed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_renewed_total",
			Help:      "Loan renewals.",
		}),
		finesAssessed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_assessed_total",
			Help:      "Fines created on late returns.",
		}),
		fineAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_assessed_amount_total",
			Help:      "Sum of assessed fine amounts.",
		}),
		finesPaid: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_paid_total",
			Help:      "Fines marked as paid.",
		}),
		reservationsPromoted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_promoted_total",
			Help:      "Pending reservations moved to notified.",
		}),
		reservationsExpired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_expired_total",
			Help:      "Notified reservations cancelled after the pickup window.",
		}),
	}
}

func (m *Metrics) LoanCreated(role domain.Role) { m.loansCreated.WithLabelValues(string(role)).Inc() }
func (m *Metrics) LoanDenied(reason domain.Reason) {
	m.loansDenied.WithLabelValues(string(reason)).Inc()
}
func (m *Metrics) LoanReturned(late bool) {
	m.loansReturned.WithLabelValues(strconv.FormatBool(late)).Inc()
}
func (m *Metrics) LoanRenewed() { m.loansRenewed.Inc() }

func (m *Metrics) FineAssessed(amount decimal.Decimal) {
	m.finesAssessed.Inc()
	f, _ := amount.Float64()
	if f > 0 {
		m.fineAmount.Add(f)
	}
}

func (m *Metrics) FinePaid()            { m.finesPaid.Inc() }
func (m *Metrics) ReservationPromoted() { m.reservationsPromoted.Inc() }
func (m *Metrics) ReservationExpired()  { m.reservationsExpired.Inc() }

// Handler serves the exposition format for the collectors in the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request count and latency. The route label is the
// ServeMux pattern that matched, so ids in paths do not explode the label
// set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status)).Inc()
		m.latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
