package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/AchilleasB/campus-library/library-service/internal/core/rules"
	"github.com/google/uuid"
)

type LoanService struct {
	repo     ports.LibraryRepository
	settings rules.Settings
	opts     options
}

var _ ports.LoanService = (*LoanService)(nil)

func NewLoanService(repo ports.LibraryRepository, settings rules.Settings, opts ...Option) *LoanService {
	return &LoanService{
		repo:     repo,
		settings: settings,
		opts:     buildOptions(opts),
	}
}

// CheckEligibility runs the loan rules without changing anything.
func (s *LoanService) CheckEligibility(ctx context.Context, userID, bookID string) (rules.Decision, error) {
	_, decision, err := s.evaluate(ctx, userID, bookID)
	return decision, err
}

func (s *LoanService) evaluate(ctx context.Context, userID, bookID string) (rules.EligibilitySnapshot, rules.Decision, error) {
	var snap rules.EligibilitySnapshot
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(bookID) == "" {
		return snap, rules.Decision{}, domain.Invalid("userId and bookId are required")
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return snap, rules.Decision{}, err
	}
	snap.User = user

	if user != nil {
		book, err := s.repo.FindBook(ctx, bookID)
		if err != nil && !errors.Is(err, domain.ErrBookNotFound) {
			return snap, rules.Decision{}, err
		}
		snap.Book = book

		if snap.PendingFines, err = s.repo.PendingFineTotal(ctx, userID); err != nil {
			return snap, rules.Decision{}, err
		}
		if snap.ActiveLoans, err = s.repo.ActiveLoans(ctx, userID); err != nil {
			return snap, rules.Decision{}, err
		}
	}

	return snap, rules.CheckEligibility(snap, s.settings), nil
}

// CreateLoan re-checks eligibility and then takes one copy atomically.
func (s *LoanService) CreateLoan(ctx context.Context, userID, bookID string) (*domain.Loan, error) {
	snap, decision, err := s.evaluate(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		s.opts.metrics.LoanDenied(decision.Reason())
		return nil, decision.Err()
	}

	now := s.opts.now()
	loan := domain.Loan{
		ID:        uuid.NewString(),
		UserID:    snap.User.ID,
		BookID:    snap.Book.ID,
		LoanDate:  now,
		DueDate:   rules.DueDate(snap.User.Role, snap.Book.Tag, now),
		Status:    domain.LoanActive,
		CreatedAt: now,
	}

	if err := s.repo.CreateLoan(ctx, loan); err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Kind == domain.KindRuleViolation {
			s.opts.metrics.LoanDenied(de.Reason)
		}
		return nil, err
	}

	s.opts.metrics.LoanCreated(snap.User.Role)
	log.Printf("loan service: loan %s created for user %s, book %s due %s",
		loan.ID, loan.UserID, loan.BookID, loan.DueDate.Format("2006-01-02"))
	return &loan, nil
}

// ReturnLoan closes an active loan, assesses a fine when it is late and
// offers the copy to the oldest pending reservation.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID string) (*domain.ReturnOutcome, error) {
	loan, err := s.repo.FindLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive() {
		return nil, domain.ErrLoanNotActive
	}

	now := s.opts.now()
	assessment := rules.CalculateFine(loan.DueDate, now, s.settings.FinePerDay)

	var fine *domain.Fine
	if assessment.DaysOverdue > 0 {
		fine = &domain.Fine{
			ID:          uuid.NewString(),
			LoanID:      loan.ID,
			UserID:      loan.UserID,
			Amount:      assessment.Amount,
			Status:      domain.FinePending,
			DaysOverdue: assessment.DaysOverdue,
			CreatedAt:   now,
		}
	}

	outcome, err := s.repo.ReturnLoan(ctx, domain.LoanReturn{
		Loan:           *loan,
		ReturnedAt:     now,
		Fine:           fine,
		PickupDeadline: now.Add(s.settings.PickupWindow),
	})
	if err != nil {
		return nil, err
	}

	s.opts.metrics.LoanReturned(fine != nil)
	if fine != nil {
		s.opts.metrics.FineAssessed(fine.Amount)
	}
	if outcome.Promoted != nil {
		s.opts.metrics.ReservationPromoted()
		log.Printf("loan service: reservation %s notified for book %s", outcome.Promoted.ID, loan.BookID)
	}
	return outcome, nil
}

// RenewLoan pushes the due date of an active loan, counted from now.
func (s *LoanService) RenewLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.repo.FindLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !loan.IsActive() {
		return nil, domain.ErrLoanNotActive
	}

	user, err := s.repo.FindUser(ctx, loan.UserID)
	if err != nil {
		return nil, err
	}
	book, err := s.repo.FindBook(ctx, loan.BookID)
	if err != nil {
		return nil, err
	}
	queue, err := s.repo.OpenReservations(ctx, domain.ReservationFilter{BookID: loan.BookID})
	if err != nil {
		return nil, err
	}
	fines, err := s.repo.PendingFineTotal(ctx, loan.UserID)
	if err != nil {
		return nil, err
	}

	decision := rules.CheckRenewal(rules.RenewalSnapshot{
		Loan:         *loan,
		Role:         user.Role,
		Tag:          book.Tag,
		Reservations: queue,
		PendingFines: fines,
	}, s.settings)
	if !decision.Allowed {
		return nil, decision.Err()
	}

	dueDate := rules.RenewedDueDate(user.Role, book.Tag, s.opts.now())
	if err := s.repo.RenewLoan(ctx, loan.ID, loan.RenewalCount, dueDate); err != nil {
		return nil, err
	}

	loan.DueDate = dueDate
	loan.RenewalCount++
	s.opts.metrics.LoanRenewed()
	return loan, nil
}

func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	return s.repo.FindLoan(ctx, loanID)
}

func (s *LoanService) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.LoanDetails, error) {
	switch filter.Status {
	case "", string(domain.LoanActive), string(domain.LoanReturned), domain.LoanStatusOverdue:
	default:
		return nil, domain.Invalid("status must be one of active, returned, overdue")
	}
	filter.Now = s.opts.now()
	return s.repo.ListLoans(ctx, filter)
}
