package handler

import (
	"net/http"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Auth         *AuthHandler
	Registration *RegistrationHandler
	Users        *UserHandler
	Catalog      *CatalogHandler
	Loans        *LoanHandler
	Reservations *ReservationHandler
	Fines        *FineHandler
	Requests     *RequestHandler
	Reports      *ReportHandler
	Health       *HealthHandler
}

var (
	librarians = []domain.Role{domain.RoleStaff, domain.RoleAdmin}
	admins     = []domain.Role{domain.RoleAdmin}
)

// RegisterRoutes mounts the API on mux. Ownership checks that depend on
// the record (own loans, own reservations) happen inside the handlers.
func RegisterRoutes(mux *http.ServeMux, h Handlers, auth *middleware.AuthMiddleware) {
	authed := auth.Authenticate
	staff := func(next http.HandlerFunc) http.HandlerFunc { return auth.RequireRole(librarians, next) }
	admin := func(next http.HandlerFunc) http.HandlerFunc { return auth.RequireRole(admins, next) }

	if h.Health != nil {
		mux.HandleFunc("/health", h.Health.Health)
		mux.HandleFunc("/health/ready", h.Health.Ready)
		mux.HandleFunc("/health/live", h.Health.Live)
	}

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/register", h.Registration.Register)
	mux.HandleFunc("POST /api/auth/logout", authed(h.Auth.Logout))

	mux.HandleFunc("GET /api/users", staff(h.Users.List))
	mux.HandleFunc("GET /api/users/{id}", authed(h.Users.Get))
	mux.HandleFunc("POST /api/users", admin(h.Users.Create))
	mux.HandleFunc("PATCH /api/users/{id}", admin(h.Users.Update))

	mux.HandleFunc("GET /api/categories", authed(h.Catalog.ListCategories))
	mux.HandleFunc("POST /api/categories", staff(h.Catalog.CreateCategory))
	mux.HandleFunc("GET /api/books", authed(h.Catalog.ListBooks))
	mux.HandleFunc("GET /api/books/{id}", authed(h.Catalog.GetBook))
	mux.HandleFunc("POST /api/books", staff(h.Catalog.CreateBook))
	mux.HandleFunc("PATCH /api/books/{id}", staff(h.Catalog.UpdateBook))
	mux.HandleFunc("DELETE /api/books/{id}", staff(h.Catalog.DeleteBook))

	mux.HandleFunc("GET /api/loans", authed(h.Loans.List))
	mux.HandleFunc("GET /api/loans/eligibility", authed(h.Loans.Eligibility))
	mux.HandleFunc("GET /api/loans/{id}", authed(h.Loans.Get))
	mux.HandleFunc("POST /api/loans", authed(h.Loans.Create))
	mux.HandleFunc("POST /api/loans/{id}/return", staff(h.Loans.Return))
	mux.HandleFunc("POST /api/loans/{id}/renew", authed(h.Loans.Renew))

	mux.HandleFunc("GET /api/reservations", authed(h.Reservations.List))
	mux.HandleFunc("POST /api/reservations", authed(h.Reservations.Create))
	mux.HandleFunc("PATCH /api/reservations/{id}", authed(h.Reservations.Update))

	mux.HandleFunc("GET /api/fines", authed(h.Fines.List))
	mux.HandleFunc("POST /api/fines/{id}/pay", staff(h.Fines.Pay))

	mux.HandleFunc("GET /api/loan-requests", authed(h.Requests.ListLoanRequests))
	mux.HandleFunc("POST /api/loan-requests", authed(h.Requests.SubmitLoanRequest))
	mux.HandleFunc("POST /api/loan-requests/{id}/approve", staff(h.Requests.ApproveLoanRequest))
	mux.HandleFunc("POST /api/loan-requests/{id}/reject", staff(h.Requests.RejectLoanRequest))
	mux.HandleFunc("GET /api/renewal-requests", authed(h.Requests.ListRenewalRequests))
	mux.HandleFunc("POST /api/renewal-requests", authed(h.Requests.SubmitRenewalRequest))
	mux.HandleFunc("POST /api/renewal-requests/{id}/approve", staff(h.Requests.ApproveRenewalRequest))
	mux.HandleFunc("POST /api/renewal-requests/{id}/reject", staff(h.Requests.RejectRenewalRequest))

	mux.HandleFunc("GET /api/dashboard/stats", staff(h.Reports.DashboardStats))
	mux.HandleFunc("GET /api/reports/popular-books", staff(h.Reports.PopularBooks))
	mux.HandleFunc("GET /api/reports/active-users", staff(h.Reports.ActiveUsers))
}
