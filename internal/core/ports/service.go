package ports

import (
	"context"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/rules"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Logout(ctx context.Context, sessionID string) error
}

type UserService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error)
	Register(ctx context.Context, input domain.NewUser) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}

type CatalogService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string, description *string) (*domain.Category, error)

	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	CreateBook(ctx context.Context, book domain.Book) (*domain.Book, error)
	UpdateBook(ctx context.Context, id string, patch domain.BookPatch) (*domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type LoanService interface {
	CheckEligibility(ctx context.Context, userID, bookID string) (rules.Decision, error)
	CreateLoan(ctx context.Context, userID, bookID string) (*domain.Loan, error)
	ReturnLoan(ctx context.Context, loanID string) (*domain.ReturnOutcome, error)
	RenewLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.LoanDetails, error)
}

type ReservationService interface {
	CreateReservation(ctx context.Context, userID, bookID string) (*domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationDetails, error)
	UpdateStatus(ctx context.Context, id string, to domain.ReservationStatus) (*domain.Reservation, error)
	ExpireNotified(ctx context.Context) ([]domain.ExpiryOutcome, error)
}

type FineService interface {
	GetFine(ctx context.Context, id string) (*domain.Fine, error)
	ListFines(ctx context.Context, userID string) ([]domain.FineDetails, error)
	PayFine(ctx context.Context, id string) (*domain.Fine, error)
}

type RequestService interface {
	SubmitLoanRequest(ctx context.Context, userID, bookID string, notes *string) (*domain.LoanRequest, error)
	ListLoanRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.LoanRequest, error)
	ApproveLoanRequest(ctx context.Context, id, reviewerID string, notes *string) (*domain.Loan, error)
	RejectLoanRequest(ctx context.Context, id, reviewerID string, notes *string) error

	SubmitRenewalRequest(ctx context.Context, userID, loanID string, notes *string) (*domain.RenewalRequest, error)
	ListRenewalRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.RenewalRequest, error)
	ApproveRenewalRequest(ctx context.Context, id, reviewerID string, notes *string) (*domain.Loan, error)
	RejectRenewalRequest(ctx context.Context, id, reviewerID string, notes *string) error
}

type ReportService interface {
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
	PopularBooks(ctx context.Context) ([]domain.BookRanking, error)
	ActiveUsers(ctx context.Context) ([]domain.UserRanking, error)
}
