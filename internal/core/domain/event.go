package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types written to the outbox and routed to the message broker.
const (
	EventLoanCreated         = "loan.created"
	EventLoanReturned        = "loan.returned"
	EventLoanRenewed         = "loan.renewed"
	EventFineAssessed        = "fine.assessed"
	EventFinePaid            = "fine.paid"
	EventReservationNotified = "reservation.notified"
	EventReservationExpired  = "reservation.expired"
)

type LoanCreatedEvent struct {
	LoanID  string    `json:"loan_id"`
	UserID  string    `json:"user_id"`
	BookID  string    `json:"book_id"`
	DueDate time.Time `json:"due_date"`
}

type LoanReturnedEvent struct {
	LoanID     string    `json:"loan_id"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	ReturnedAt time.Time `json:"returned_at"`
	Late       bool      `json:"late"`
}

type LoanRenewedEvent struct {
	LoanID       string    `json:"loan_id"`
	UserID       string    `json:"user_id"`
	DueDate      time.Time `json:"due_date"`
	RenewalCount int       `json:"renewal_count"`
}

type FineEvent struct {
	FineID      string          `json:"fine_id"`
	LoanID      string          `json:"loan_id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	DaysOverdue int             `json:"days_overdue"`
}

type ReservationEvent struct {
	ReservationID string     `json:"reservation_id"`
	UserID        string     `json:"user_id"`
	BookID        string     `json:"book_id"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}
