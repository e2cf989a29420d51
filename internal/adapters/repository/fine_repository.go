package repository

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const fineColumns = "id, loan_id, user_id, amount, status, days_overdue, payment_date, created_at"

func (r *SQLRepository) FindFine(ctx context.Context, id string) (*domain.Fine, error) {
	var fine domain.Fine
	if err := get(ctx, r.db, &fine, domain.ErrFineNotFound,
		"SELECT "+fineColumns+" FROM fines WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &fine, nil
}

func (r *SQLRepository) ListFines(ctx context.Context, userID string) ([]domain.FineDetails, error) {
	ds := r.builder.From(goqu.T("fines").As("f")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("f.user_id")))).
		Join(goqu.T("loans").As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("f.loan_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Select(
			goqu.I("f.id"), goqu.I("f.loan_id"), goqu.I("f.user_id"), goqu.I("f.amount"),
			goqu.I("f.status"), goqu.I("f.days_overdue"), goqu.I("f.payment_date"), goqu.I("f.created_at"),
			goqu.I("u.name").As("user_name"),
			goqu.I("b.title").As("book_title"),
		).
		Order(goqu.I("f.created_at").Desc())
	if userID != "" {
		ds = ds.Where(goqu.I("f.user_id").Eq(userID))
	}

	fines := make([]domain.FineDetails, 0)
	if err := r.selectAll(ctx, "list fines", &fines, ds); err != nil {
		return nil, err
	}
	return fines, nil
}

func (r *SQLRepository) PendingFineTotal(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0) FROM fines
		WHERE user_id = $1 AND status = 'pending'`, userID)
	if err != nil {
		return decimal.Zero, storageError("pending fines", err)
	}
	return total, nil
}

func (r *SQLRepository) PayFine(ctx context.Context, id string, paidAt time.Time) error {
	return r.withTx(ctx, "pay fine", func(tx *sqlx.Tx) error {
		var fine domain.Fine
		err := get(ctx, tx, &fine, nil, `
			UPDATE fines SET status = 'paid', payment_date = $2
			WHERE id = $1 AND status = 'pending'
			RETURNING `+fineColumns, id, paidAt)
		if err != nil {
			return err
		}
		if fine.ID == "" {
			found, err := exists(ctx, tx, "fines", id)
			if err != nil {
				return err
			}
			if !found {
				return domain.ErrFineNotFound
			}
			return domain.ErrFineAlreadyPaid
		}

		return enqueue(ctx, tx, domain.EventFinePaid, "fine", fine.ID, domain.FineEvent{
			FineID:      fine.ID,
			LoanID:      fine.LoanID,
			UserID:      fine.UserID,
			Amount:      fine.Amount,
			DaysOverdue: fine.DaysOverdue,
		})
	})
}
