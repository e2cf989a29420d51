package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the persisted lifecycle state. Overdue is never stored;
// see Loan.IsOverdue.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// LoanStatusOverdue is accepted only as a listing filter.
const LoanStatusOverdue = "overdue"

type Loan struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	BookID       string     `db:"book_id"`
	LoanDate     time.Time  `db:"loan_date"`
	DueDate      time.Time  `db:"due_date"`
	ReturnDate   *time.Time `db:"return_date"`
	Status       LoanStatus `db:"status"`
	RenewalCount int        `db:"renewal_count"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (l Loan) IsActive() bool {
	return l.Status == LoanActive
}

// IsOverdue reports whether an active loan is past its due date at now.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanActive && l.DueDate.Before(now)
}

// LoanDetails is a loan joined with the borrower and book it refers to.
type LoanDetails struct {
	Loan
	UserName   string `db:"user_name"`
	BookTitle  string `db:"book_title"`
	BookAuthor string `db:"book_author"`
}

// ActiveLoan is the slice of an active loan the eligibility rules need.
type ActiveLoan struct {
	LoanID string `db:"id"`
	BookID string `db:"book_id"`
	Title  string `db:"title"`
}

type LoanFilter struct {
	UserID string
	BookID string
	Status string
	Now    time.Time
}

// LoanReturn is everything that must be committed together when a copy
// comes back.
type LoanReturn struct {
	Loan           Loan
	ReturnedAt     time.Time
	Fine           *Fine
	PickupDeadline time.Time
}

// ReturnOutcome reports the side effects of a committed return.
type ReturnOutcome struct {
	Fine     *Fine
	Promoted *Reservation
}

// LoanAssessment is a fine computation result.
type LoanAssessment struct {
	Amount      decimal.Decimal
	DaysOverdue int
}
