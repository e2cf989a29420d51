package rules

import (
	"fmt"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RenewalSnapshot is the state a renewal decision is made against.
// Reservations are the open reservations on the loaned book.
type RenewalSnapshot struct {
	Loan         domain.Loan
	Role         domain.Role
	Tag          domain.Tag
	Reservations []domain.Reservation
	PendingFines decimal.Decimal
}

// CheckRenewal decides whether an active loan may be extended.
func CheckRenewal(s RenewalSnapshot, settings Settings) Decision {
	if !s.Loan.IsActive() {
		return deny(domain.ErrLoanNotActive)
	}
	if s.Loan.RenewalCount >= settings.MaxRenewals {
		return deny(domain.Violation(domain.ReasonRenewalLimitReached,
			fmt.Sprintf("loan has already been renewed %d times", settings.MaxRenewals)))
	}
	for _, r := range s.Reservations {
		if r.UserID != s.Loan.UserID && r.Status.IsOpen() {
			return deny(domain.Violation(domain.ReasonReservationQueue,
				"another reader is waiting for this book"))
		}
	}
	if s.PendingFines.IsPositive() {
		return deny(domain.Violation(domain.ReasonPendingFines,
			"pending fines must be paid before renewing"))
	}
	if LoanDays(s.Role, s.Tag) == 0 {
		return deny(domain.Violation(domain.ReasonLibraryUseOnly,
			"this book can no longer be lent out"))
	}
	return allow()
}

// RenewedDueDate is the due date of a renewed loan, counted from now.
func RenewedDueDate(role domain.Role, tag domain.Tag, now time.Time) time.Time {
	return DueDate(role, tag, now)
}
