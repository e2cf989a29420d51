package rules

import (
	"fmt"
	"strings"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EligibilitySnapshot is the state a loan decision is made against. A nil
// User or Book means the id did not resolve.
type EligibilitySnapshot struct {
	User         *domain.User
	Book         *domain.Book
	PendingFines decimal.Decimal
	ActiveLoans  []domain.ActiveLoan
}

// CheckEligibility decides whether the user may borrow the book. Checks run
// in a fixed order and the first failure wins.
func CheckEligibility(s EligibilitySnapshot, settings Settings) Decision {
	if s.User == nil {
		return deny(domain.ErrUserNotFound)
	}
	if !s.User.IsActive {
		return deny(domain.Violation(domain.ReasonUserInactive, "user account is inactive"))
	}
	if s.Book == nil {
		return deny(domain.ErrBookNotFound)
	}
	if s.Book.AvailableCopies <= 0 {
		return deny(domain.Violation(domain.ReasonBookUnavailable, "no copies of this book are available"))
	}
	if s.Book.Tag == domain.TagRed {
		return deny(domain.Violation(domain.ReasonLibraryUseOnly, "red-tag books are for library use only"))
	}
	if s.PendingFines.GreaterThanOrEqual(settings.FineBlockThreshold) {
		return deny(domain.Violation(domain.ReasonFinesBlockLoans,
			fmt.Sprintf("pending fines of %s reach the limit of %s", s.PendingFines.StringFixed(2), settings.FineBlockThreshold.StringFixed(2))))
	}

	policy, ok := PolicyFor(s.User.Role)
	if !ok {
		return deny(domain.Violation(domain.ReasonRoleCannotBorrow,
			fmt.Sprintf("role %s has no lending policy", s.User.Role)))
	}
	if len(s.ActiveLoans) >= policy.MaxBooks {
		return deny(domain.Violation(domain.ReasonLoanLimitReached,
			fmt.Sprintf("loan limit of %d books reached", policy.MaxBooks)))
	}

	for _, l := range s.ActiveLoans {
		if l.BookID == s.Book.ID {
			return deny(domain.ErrAlreadyBorrowed)
		}
	}
	if policy.UniqueTitlesOnly {
		for _, l := range s.ActiveLoans {
			if sameTitle(l.Title, s.Book.Title) {
				return deny(domain.Violation(domain.ReasonDuplicateTitle,
					"user already has a copy of this title on loan"))
			}
		}
	}

	return allow()
}

func sameTitle(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
