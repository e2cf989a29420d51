package rules

import (
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// CalculateFine charges perDay for every whole day returned is past due.
func CalculateFine(due, returned time.Time, perDay decimal.Decimal) domain.LoanAssessment {
	days := int(returned.Sub(due) / day)
	if days <= 0 {
		return domain.LoanAssessment{Amount: decimal.Zero}
	}
	return domain.LoanAssessment{
		Amount:      perDay.Mul(decimal.NewFromInt(int64(days))),
		DaysOverdue: days,
	}
}
