package rules

import (
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
)

// LoanDays returns the loan length for a borrower role and book tag.
// Red books and unknown tags or roles yield 0.
func LoanDays(role domain.Role, tag domain.Tag) int {
	switch tag {
	case domain.TagYellow:
		return yellowTagLoanDays
	case domain.TagWhite:
		p, ok := PolicyFor(role)
		if !ok {
			return 0
		}
		return p.WhiteTagLoanDays
	default:
		return 0
	}
}

// DueDate adds the loan length in calendar days to from.
func DueDate(role domain.Role, tag domain.Tag, from time.Time) time.Time {
	return from.AddDate(0, 0, LoanDays(role, tag))
}
