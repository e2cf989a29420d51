package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
)

type UserRepository interface {
	FindUser(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, user domain.User) error
	UpdateUser(ctx context.Context, user domain.User) error
}

type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	FindCategory(ctx context.Context, id string) (*domain.Category, error)
	CreateCategory(ctx context.Context, category domain.Category) error

	FindBook(ctx context.Context, id string) (*domain.Book, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	CreateBook(ctx context.Context, book domain.Book) error
	UpdateBook(ctx context.Context, book domain.Book) error
	DeleteBook(ctx context.Context, id string) error
}

// LoanRepository persists loans. Every mutating method commits its side
// effects (availability, fines, reservation promotion, outbox events) in a
// single transaction.
type LoanRepository interface {
	FindLoan(ctx context.Context, id string) (*domain.Loan, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.LoanDetails, error)
	ActiveLoans(ctx context.Context, userID string) ([]domain.ActiveLoan, error)

	// CreateLoan takes one copy of the book only if one is still free and
	// returns domain.ErrCapacityExceeded otherwise.
	CreateLoan(ctx context.Context, loan domain.Loan) error
	// ReturnLoan returns domain.ErrLoanNotActive if the loan was already
	// returned by the time the update ran.
	ReturnLoan(ctx context.Context, ret domain.LoanReturn) (*domain.ReturnOutcome, error)
	// RenewLoan applies only if the loan is still active with
	// expectedRenewals renewals.
	RenewLoan(ctx context.Context, loanID string, expectedRenewals int, dueDate time.Time) error
}

type ReservationRepository interface {
	FindReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationDetails, error)
	OpenReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	CreateReservation(ctx context.Context, reservation domain.Reservation) error
	// UpdateReservation writes status and timestamps only if the stored
	// reservation is still in status from.
	UpdateReservation(ctx context.Context, r domain.Reservation, from domain.ReservationStatus) error
	// ReleaseReservation closes a notified reservation with r.Status and
	// offers the book to the next pending reservation, returned if any.
	ReleaseReservation(ctx context.Context, r domain.Reservation, now, pickupDeadline time.Time) (*domain.Reservation, error)
	ExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	// ExpireReservation cancels an expired notified reservation and offers
	// the book to the next pending reservation.
	ExpireReservation(ctx context.Context, id string, now, pickupDeadline time.Time) (*domain.ExpiryOutcome, error)
}

type FineRepository interface {
	FindFine(ctx context.Context, id string) (*domain.Fine, error)
	ListFines(ctx context.Context, userID string) ([]domain.FineDetails, error)
	PendingFineTotal(ctx context.Context, userID string) (decimal.Decimal, error)
	// PayFine applies only to a pending fine.
	PayFine(ctx context.Context, id string, paidAt time.Time) error
}

type RequestRepository interface {
	CreateLoanRequest(ctx context.Context, req domain.LoanRequest) error
	FindLoanRequest(ctx context.Context, id string) (*domain.LoanRequest, error)
	ListLoanRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.LoanRequest, error)
	ReviewLoanRequest(ctx context.Context, review domain.Review) error
	ReopenLoanRequest(ctx context.Context, id string) error

	CreateRenewalRequest(ctx context.Context, req domain.RenewalRequest) error
	FindRenewalRequest(ctx context.Context, id string) (*domain.RenewalRequest, error)
	ListRenewalRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.RenewalRequest, error)
	ReviewRenewalRequest(ctx context.Context, review domain.Review) error
	ReopenRenewalRequest(ctx context.Context, id string) error
}

type ReportRepository interface {
	DashboardStats(ctx context.Context, now time.Time) (*domain.DashboardStats, error)
	PopularBooks(ctx context.Context, limit int) ([]domain.BookRanking, error)
	ActiveUsers(ctx context.Context, limit int) ([]domain.UserRanking, error)
}

// LibraryRepository is the full storage port implemented by the SQL adapter.
type LibraryRepository interface {
	UserRepository
	CatalogRepository
	LoanRepository
	ReservationRepository
	FineRepository
	RequestRepository
	ReportRepository
}
