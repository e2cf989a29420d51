package services

import (
	"context"
	"log"
	"strings"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/google/uuid"
)

// RequestService runs the staff-reviewed path to loans and renewals.
// Approval performs the same operation as the direct endpoint.
type RequestService struct {
	repo  ports.LibraryRepository
	loans ports.LoanService
	opts  options
}

var _ ports.RequestService = (*RequestService)(nil)

func NewRequestService(repo ports.LibraryRepository, loans ports.LoanService, opts ...Option) *RequestService {
	return &RequestService{repo: repo, loans: loans, opts: buildOptions(opts)}
}

func (s *RequestService) SubmitLoanRequest(ctx context.Context, userID, bookID string, notes *string) (*domain.LoanRequest, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(bookID) == "" {
		return nil, domain.Invalid("userId and bookId are required")
	}
	if _, err := s.repo.FindUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBook(ctx, bookID); err != nil {
		return nil, err
	}

	req := domain.LoanRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		BookID:      bookID,
		Status:      domain.RequestPending,
		RequestDate: s.opts.now(),
		Notes:       notes,
	}
	if err := s.repo.CreateLoanRequest(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *RequestService) ListLoanRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.LoanRequest, error) {
	return s.repo.ListLoanRequests(ctx, filter)
}

// ApproveLoanRequest claims the request before creating the loan, so a
// concurrent rejection either loses the claim or prevents the loan.
func (s *RequestService) ApproveLoanRequest(ctx context.Context, id, reviewerID string, notes *string) (*domain.Loan, error) {
	req, err := s.repo.FindLoanRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestPending {
		return nil, domain.ErrRequestReviewed
	}
	if err := s.repo.ReviewLoanRequest(ctx, s.review(id, reviewerID, domain.RequestApproved, notes)); err != nil {
		return nil, err
	}

	loan, err := s.loans.CreateLoan(ctx, req.UserID, req.BookID)
	if err != nil {
		if reopenErr := s.repo.ReopenLoanRequest(ctx, id); reopenErr != nil {
			log.Printf("request service: loan request %s left approved after failed checkout: %v", id, reopenErr)
		}
		return nil, err
	}
	return loan, nil
}

func (s *RequestService) RejectLoanRequest(ctx context.Context, id, reviewerID string, notes *string) error {
	req, err := s.repo.FindLoanRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.Status != domain.RequestPending {
		return domain.ErrRequestReviewed
	}
	return s.repo.ReviewLoanRequest(ctx, s.review(id, reviewerID, domain.RequestRejected, notes))
}

func (s *RequestService) SubmitRenewalRequest(ctx context.Context, userID, loanID string, notes *string) (*domain.RenewalRequest, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(loanID) == "" {
		return nil, domain.Invalid("userId and loanId are required")
	}
	loan, err := s.repo.FindLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, domain.Invalid("loan belongs to another user")
	}
	if !loan.IsActive() {
		return nil, domain.ErrLoanNotActive
	}

	req := domain.RenewalRequest{
		ID:          uuid.NewString(),
		LoanID:      loanID,
		UserID:      userID,
		Status:      domain.RequestPending,
		RequestDate: s.opts.now(),
		Notes:       notes,
	}
	if err := s.repo.CreateRenewalRequest(ctx, req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *RequestService) ListRenewalRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.RenewalRequest, error) {
	return s.repo.ListRenewalRequests(ctx, filter)
}

func (s *RequestService) ApproveRenewalRequest(ctx context.Context, id, reviewerID string, notes *string) (*domain.Loan, error) {
	req, err := s.repo.FindRenewalRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestPending {
		return nil, domain.ErrRequestReviewed
	}
	if err := s.repo.ReviewRenewalRequest(ctx, s.review(id, reviewerID, domain.RequestApproved, notes)); err != nil {
		return nil, err
	}

	loan, err := s.loans.RenewLoan(ctx, req.LoanID)
	if err != nil {
		if reopenErr := s.repo.ReopenRenewalRequest(ctx, id); reopenErr != nil {
			log.Printf("request service: renewal request %s left approved after failed renewal: %v", id, reopenErr)
		}
		return nil, err
	}
	return loan, nil
}

func (s *RequestService) RejectRenewalRequest(ctx context.Context, id, reviewerID string, notes *string) error {
	req, err := s.repo.FindRenewalRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.Status != domain.RequestPending {
		return domain.ErrRequestReviewed
	}
	return s.repo.ReviewRenewalRequest(ctx, s.review(id, reviewerID, domain.RequestRejected, notes))
}

func (s *RequestService) review(id, reviewerID string, status domain.RequestStatus, notes *string) domain.Review {
	return domain.Review{
		RequestID:  id,
		Status:     status,
		ReviewerID: reviewerID,
		ReviewedAt: s.opts.now(),
		Notes:      notes,
	}
}
