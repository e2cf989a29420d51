package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

const loanColumns = "id, user_id, book_id, loan_date, due_date, return_date, status, renewal_count, created_at"

func (r *SQLRepository) FindLoan(ctx context.Context, id string) (*domain.Loan, error) {
	var loan domain.Loan
	if err := get(ctx, r.db, &loan, domain.ErrLoanNotFound,
		"SELECT "+loanColumns+" FROM loans WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &loan, nil
}

// ListLoans joins borrower and book. The overdue filter is evaluated
// against filter.Now; it is never a stored status.
func (r *SQLRepository) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.LoanDetails, error) {
	ds := r.builder.From(goqu.T("loans").As("l")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("l.user_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Select(
			goqu.I("l.id"), goqu.I("l.user_id"), goqu.I("l.book_id"), goqu.I("l.loan_date"),
			goqu.I("l.due_date"), goqu.I("l.return_date"), goqu.I("l.status"),
			goqu.I("l.renewal_count"), goqu.I("l.created_at"),
			goqu.I("u.name").As("user_name"),
			goqu.I("b.title").As("book_title"),
			goqu.I("b.author").As("book_author"),
		).
		Order(goqu.I("l.loan_date").Desc())

	if filter.UserID != "" {
		ds = ds.Where(goqu.I("l.user_id").Eq(filter.UserID))
	}
	if filter.BookID != "" {
		ds = ds.Where(goqu.I("l.book_id").Eq(filter.BookID))
	}
	switch filter.Status {
	case "":
	case domain.LoanStatusOverdue:
		ds = ds.Where(
			goqu.I("l.status").Eq(string(domain.LoanActive)),
			goqu.I("l.due_date").Lt(filter.Now),
		)
	default:
		ds = ds.Where(goqu.I("l.status").Eq(filter.Status))
	}

	loans := make([]domain.LoanDetails, 0)
	if err := r.selectAll(ctx, "list loans", &loans, ds); err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *SQLRepository) ActiveLoans(ctx context.Context, userID string) ([]domain.ActiveLoan, error) {
	loans := make([]domain.ActiveLoan, 0)
	err := r.db.SelectContext(ctx, &loans, `
		SELECT l.id, l.book_id, b.title
		FROM loans l JOIN books b ON b.id = l.book_id
		WHERE l.user_id = $1 AND l.status = 'active'`, userID)
	if err != nil {
		return nil, storageError("active loans", err)
	}
	return loans, nil
}

// CreateLoan decrements availability only while a copy is free, inserts the
// loan and closes the borrower's own open reservation for the book.
func (r *SQLRepository) CreateLoan(ctx context.Context, loan domain.Loan) error {
	return r.withTx(ctx, "create loan", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE books SET available_copies = available_copies - 1
			WHERE id = $1 AND available_copies > 0`, loan.BookID)
		n, err := affected("take copy", res, err)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrCapacityExceeded
		}

		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO loans (id, user_id, book_id, loan_date, due_date, status, renewal_count, created_at)
			VALUES (:id, :user_id, :book_id, :loan_date, :due_date, :status, :renewal_count, :created_at)`, loan); err != nil {
			return storageError("insert loan", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE reservations SET status = 'completed'
			WHERE user_id = $1 AND book_id = $2 AND status IN ('pending', 'notified')`,
			loan.UserID, loan.BookID); err != nil {
			return storageError("complete reservation", err)
		}

		return enqueue(ctx, tx, domain.EventLoanCreated, "loan", loan.ID, domain.LoanCreatedEvent{
			LoanID:  loan.ID,
			UserID:  loan.UserID,
			BookID:  loan.BookID,
			DueDate: loan.DueDate,
		})
	})
}

func (r *SQLRepository) ReturnLoan(ctx context.Context, ret domain.LoanReturn) (*domain.ReturnOutcome, error) {
	outcome := &domain.ReturnOutcome{}
	loan := ret.Loan

	err := r.withTx(ctx, "return loan", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE loans SET status = 'returned', return_date = $2
			WHERE id = $1 AND status = 'active'`, loan.ID, ret.ReturnedAt)
		n, err := affected("close loan", res, err)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrLoanNotActive
		}
		if err := enqueue(ctx, tx, domain.EventLoanReturned, "loan", loan.ID, domain.LoanReturnedEvent{
			LoanID:     loan.ID,
			UserID:     loan.UserID,
			BookID:     loan.BookID,
			ReturnedAt: ret.ReturnedAt,
			Late:       ret.Fine != nil,
		}); err != nil {
			return err
		}

		if ret.Fine != nil {
			if _, err := tx.NamedExecContext(ctx, `
				INSERT INTO fines (id, loan_id, user_id, amount, status, days_overdue, created_at)
				VALUES (:id, :loan_id, :user_id, :amount, :status, :days_overdue, :created_at)`, ret.Fine); err != nil {
				return storageError("insert fine", err)
			}
			if err := enqueue(ctx, tx, domain.EventFineAssessed, "fine", ret.Fine.ID, domain.FineEvent{
				FineID:      ret.Fine.ID,
				LoanID:      loan.ID,
				UserID:      loan.UserID,
				Amount:      ret.Fine.Amount,
				DaysOverdue: ret.Fine.DaysOverdue,
			}); err != nil {
				return err
			}
			fine := *ret.Fine
			outcome.Fine = &fine
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE books SET available_copies = available_copies + 1
			WHERE id = $1 AND available_copies < total_copies`, loan.BookID); err != nil {
			return storageError("release copy", err)
		}

		promoted, err := promoteNext(ctx, tx, loan.BookID, ret.ReturnedAt, ret.PickupDeadline)
		if err != nil {
			return err
		}
		outcome.Promoted = promoted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// promoteNext notifies the oldest pending reservation for bookID. Rows
// locked by a concurrent promotion are skipped. The queue order is
// reservation_date then id, as in rules.NextInQueue.
func promoteNext(ctx context.Context, tx *sqlx.Tx, bookID string, at, deadline time.Time) (*domain.Reservation, error) {
	var next domain.Reservation
	err := tx.GetContext(ctx, &next, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE book_id = $1 AND status = 'pending'
		ORDER BY reservation_date, id
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("queue head", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE reservations SET status = 'notified', notification_date = $2, expiration_date = $3
		WHERE id = $1`, next.ID, at, deadline); err != nil {
		return nil, storageError("notify reservation", err)
	}

	notifiedAt, expiresAt := at, deadline
	next.Status = domain.ReservationNotified
	next.NotificationDate = &notifiedAt
	next.ExpirationDate = &expiresAt

	if err := enqueue(ctx, tx, domain.EventReservationNotified, "reservation", next.ID, domain.ReservationEvent{
		ReservationID: next.ID,
		UserID:        next.UserID,
		BookID:        next.BookID,
		ExpiresAt:     &expiresAt,
	}); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *SQLRepository) RenewLoan(ctx context.Context, loanID string, expectedRenewals int, dueDate time.Time) error {
	return r.withTx(ctx, "renew loan", func(tx *sqlx.Tx) error {
		var loan domain.Loan
		err := tx.GetContext(ctx, &loan, `
			UPDATE loans SET due_date = $3, renewal_count = renewal_count + 1
			WHERE id = $1 AND status = 'active' AND renewal_count = $2
			RETURNING `+loanColumns, loanID, expectedRenewals, dueDate)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrLoanChanged
		}
		if err != nil {
			return storageError("renew loan", err)
		}

		return enqueue(ctx, tx, domain.EventLoanRenewed, "loan", loan.ID, domain.LoanRenewedEvent{
			LoanID:       loan.ID,
			UserID:       loan.UserID,
			DueDate:      loan.DueDate,
			RenewalCount: loan.RenewalCount,
		})
	})
}
