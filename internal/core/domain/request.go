package domain

import "time"

// RequestStatus tracks staff review of a loan or renewal request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type LoanRequest struct {
	ID          string        `db:"id"`
	UserID      string        `db:"user_id"`
	BookID      string        `db:"book_id"`
	Status      RequestStatus `db:"status"`
	RequestDate time.Time     `db:"request_date"`
	ReviewedBy  *string       `db:"reviewed_by"`
	ReviewDate  *time.Time    `db:"review_date"`
	Notes       *string       `db:"notes"`
	ReviewNotes *string       `db:"review_notes"`
}

type RenewalRequest struct {
	ID          string        `db:"id"`
	LoanID      string        `db:"loan_id"`
	UserID      string        `db:"user_id"`
	Status      RequestStatus `db:"status"`
	RequestDate time.Time     `db:"request_date"`
	ReviewedBy  *string       `db:"reviewed_by"`
	ReviewDate  *time.Time    `db:"review_date"`
	Notes       *string       `db:"notes"`
	ReviewNotes *string       `db:"review_notes"`
}

type RequestFilter struct {
	UserID string
	Status RequestStatus
}

// Review is a staff decision on a pending request.
type Review struct {
	RequestID  string
	Status     RequestStatus
	ReviewerID string
	ReviewedAt time.Time
	Notes      *string
}
