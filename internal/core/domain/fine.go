package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FineStatus string

const (
	FinePending FineStatus = "pending"
	FinePaid    FineStatus = "paid"
)

type Fine struct {
	ID          string          `db:"id"`
	LoanID      string          `db:"loan_id"`
	UserID      string          `db:"user_id"`
	Amount      decimal.Decimal `db:"amount"`
	Status      FineStatus      `db:"status"`
	DaysOverdue int             `db:"days_overdue"`
	PaymentDate *time.Time      `db:"payment_date"`
	CreatedAt   time.Time       `db:"created_at"`
}

type FineDetails struct {
	Fine
	UserName  string `db:"user_name"`
	BookTitle string `db:"book_title"`
}
