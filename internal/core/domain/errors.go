package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so transports can map them without
// inspecting messages.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "NotFound"
	KindInvalidState    ErrorKind = "InvalidState"
	KindRuleViolation   ErrorKind = "RuleViolation"
	KindValidationError ErrorKind = "ValidationError"
	KindStorageError    ErrorKind = "StorageError"
)

// Reason identifies which rule or lookup failed.
type Reason string

const (
	ReasonUserNotFound        Reason = "user_not_found"
	ReasonUserInactive        Reason = "user_inactive"
	ReasonBookNotFound        Reason = "book_not_found"
	ReasonCategoryNotFound    Reason = "category_not_found"
	ReasonLoanNotFound        Reason = "loan_not_found"
	ReasonReservationNotFound Reason = "reservation_not_found"
	ReasonFineNotFound        Reason = "fine_not_found"
	ReasonRequestNotFound     Reason = "request_not_found"

	ReasonBookUnavailable         Reason = "book_unavailable"
	ReasonLibraryUseOnly          Reason = "library_use_only"
	ReasonFinesBlockLoans         Reason = "fines_block_loans"
	ReasonRoleCannotBorrow        Reason = "role_cannot_borrow"
	ReasonLoanLimitReached        Reason = "loan_limit_reached"
	ReasonAlreadyBorrowed         Reason = "already_borrowed"
	ReasonDuplicateTitle          Reason = "duplicate_title"
	ReasonCapacityExceeded        Reason = "capacity_exceeded"
	ReasonRenewalLimitReached     Reason = "renewal_limit_reached"
	ReasonReservationQueue        Reason = "reservation_queue"
	ReasonPendingFines            Reason = "pending_fines"
	ReasonReservationLimitReached Reason = "reservation_limit_reached"
	ReasonDuplicateReservation    Reason = "duplicate_reservation"
	ReasonBookHasLoans            Reason = "book_has_loans"

	ReasonLoanNotActive       Reason = "loan_not_active"
	ReasonLoanChanged         Reason = "loan_changed"
	ReasonFineAlreadyPaid     Reason = "fine_already_paid"
	ReasonInvalidTransition   Reason = "invalid_transition"
	ReasonRequestReviewed     Reason = "request_already_reviewed"
	ReasonDuplicateIdentifier Reason = "duplicate_identifier"

	ReasonInvalidInput Reason = "invalid_input"
	ReasonStorage      Reason = "storage_failure"
)

// Error is the structured failure returned by core services.
type Error struct {
	Kind    ErrorKind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and reason so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Reason == "" {
		return e.Kind == t.Kind
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

func NotFound(reason Reason, msg string) *Error {
	return &Error{Kind: KindNotFound, Reason: reason, Message: msg}
}

func InvalidState(reason Reason, msg string) *Error {
	return &Error{Kind: KindInvalidState, Reason: reason, Message: msg}
}

func Violation(reason Reason, msg string) *Error {
	return &Error{Kind: KindRuleViolation, Reason: reason, Message: msg}
}

func Invalid(msg string) *Error {
	return &Error{Kind: KindValidationError, Reason: ReasonInvalidInput, Message: msg}
}

// Storage wraps an unexpected persistence failure.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorageError, Reason: ReasonStorage, Message: op, Err: err}
}

// KindOf classifies any error. Errors that are not *Error are StorageError.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorageError
}

var (
	ErrUserNotFound        = NotFound(ReasonUserNotFound, "user not found")
	ErrBookNotFound        = NotFound(ReasonBookNotFound, "book not found")
	ErrCategoryNotFound    = NotFound(ReasonCategoryNotFound, "category not found")
	ErrLoanNotFound        = NotFound(ReasonLoanNotFound, "loan not found")
	ErrReservationNotFound = NotFound(ReasonReservationNotFound, "reservation not found")
	ErrFineNotFound        = NotFound(ReasonFineNotFound, "fine not found")
	ErrRequestNotFound     = NotFound(ReasonRequestNotFound, "request not found")

	ErrCapacityExceeded = Violation(ReasonCapacityExceeded, "no copies left to lend")
	ErrAlreadyBorrowed  = Violation(ReasonAlreadyBorrowed, "user already has this book on loan")
	ErrBookHasLoans     = Violation(ReasonBookHasLoans, "book has loan history and cannot be deleted")

	ErrLoanNotActive     = InvalidState(ReasonLoanNotActive, "loan is not active")
	ErrLoanChanged       = InvalidState(ReasonLoanChanged, "loan was modified concurrently")
	ErrFineAlreadyPaid   = InvalidState(ReasonFineAlreadyPaid, "fine has already been paid")
	ErrRequestReviewed   = InvalidState(ReasonRequestReviewed, "request has already been reviewed")
	ErrDuplicateIdentity = InvalidState(ReasonDuplicateIdentifier, "a record with the same unique value already exists")
)
