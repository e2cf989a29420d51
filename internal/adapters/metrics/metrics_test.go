package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCirculationCounters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.LoanCreated(domain.RoleStudent)
	m.LoanCreated(domain.RoleStudent)
	m.LoanDenied(domain.ReasonLibraryUseOnly)
	m.LoanReturned(true)
	m.FineAssessed(decimal.RequireFromString("1.50"))
	m.FinePaid()
	m.ReservationExpired()

	out := scrape(t, m)
	assert.Contains(t, out, `library_loans_created_total{role="student"} 2`)
	assert.Contains(t, out, `library_loans_denied_total{reason="library_use_only"} 1`)
	assert.Contains(t, out, `library_loans_returned_total{late="true"} 1`)
	assert.Contains(t, out, `library_fines_assessed_amount_total 1.5`)
	assert.Contains(t, out, `library_fines_paid_total 1`)
	assert.Contains(t, out, `library_reservations_expired_total 1`)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	for _, id := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/books/"+id, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `library_http_requests_total{code="404",method="GET",route="GET /api/books/{id}"} 3`)
	assert.False(t, strings.Contains(out, `/api/books/a`), "raw paths must not become labels")
}
