package repository

import (
	"context"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

const (
	loanRequestColumns    = "id, user_id, book_id, status, request_date, reviewed_by, review_date, notes, review_notes"
	renewalRequestColumns = "id, loan_id, user_id, status, request_date, reviewed_by, review_date, notes, review_notes"
)

func (r *SQLRepository) CreateLoanRequest(ctx context.Context, req domain.LoanRequest) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO loan_requests (id, user_id, book_id, status, request_date, notes)
		VALUES (:id, :user_id, :book_id, :status, :request_date, :notes)`, req)
	if err != nil {
		return storageError("create loan request", err)
	}
	return nil
}

func (r *SQLRepository) FindLoanRequest(ctx context.Context, id string) (*domain.LoanRequest, error) {
	var req domain.LoanRequest
	if err := get(ctx, r.db, &req, domain.ErrRequestNotFound,
		"SELECT "+loanRequestColumns+" FROM loan_requests WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *SQLRepository) ListLoanRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.LoanRequest, error) {
	ds := requestFilter(r.builder.From("loan_requests").Select(goqu.L(loanRequestColumns)), filter)
	requests := make([]domain.LoanRequest, 0)
	if err := r.selectAll(ctx, "list loan requests", &requests, ds); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *SQLRepository) ReviewLoanRequest(ctx context.Context, review domain.Review) error {
	return r.review(ctx, "loan_requests", review)
}

func (r *SQLRepository) ReopenLoanRequest(ctx context.Context, id string) error {
	return r.reopen(ctx, "loan_requests", id)
}

func (r *SQLRepository) CreateRenewalRequest(ctx context.Context, req domain.RenewalRequest) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO renewal_requests (id, loan_id, user_id, status, request_date, notes)
		VALUES (:id, :loan_id, :user_id, :status, :request_date, :notes)`, req)
	if err != nil {
		return storageError("create renewal request", err)
	}
	return nil
}

func (r *SQLRepository) FindRenewalRequest(ctx context.Context, id string) (*domain.RenewalRequest, error) {
	var req domain.RenewalRequest
	if err := get(ctx, r.db, &req, domain.ErrRequestNotFound,
		"SELECT "+renewalRequestColumns+" FROM renewal_requests WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *SQLRepository) ListRenewalRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.RenewalRequest, error) {
	ds := requestFilter(r.builder.From("renewal_requests").Select(goqu.L(renewalRequestColumns)), filter)
	requests := make([]domain.RenewalRequest, 0)
	if err := r.selectAll(ctx, "list renewal requests", &requests, ds); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *SQLRepository) ReviewRenewalRequest(ctx context.Context, review domain.Review) error {
	return r.review(ctx, "renewal_requests", review)
}

func (r *SQLRepository) ReopenRenewalRequest(ctx context.Context, id string) error {
	return r.reopen(ctx, "renewal_requests", id)
}

func requestFilter(ds *goqu.SelectDataset, filter domain.RequestFilter) *goqu.SelectDataset {
	if filter.UserID != "" {
		ds = ds.Where(goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	return ds.Order(goqu.C("request_date").Asc())
}

// review records a decision on a request that is still pending.
func (r *SQLRepository) review(ctx context.Context, table string, review domain.Review) error {
	return r.withTx(ctx, "review request", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE `+table+` SET status = $2, reviewed_by = $3, review_date = $4, review_notes = $5
			WHERE id = $1 AND status = 'pending'`,
			review.RequestID, review.Status, review.ReviewerID, review.ReviewedAt, review.Notes)
		n, err := affected("review request", res, err)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		found, err := exists(ctx, tx, table, review.RequestID)
		if err != nil {
			return err
		}
		if !found {
			return domain.ErrRequestNotFound
		}
		return domain.ErrRequestReviewed
	})
}

// reopen returns an approved request to pending when the operation its
// approval claimed could not be carried out.
func (r *SQLRepository) reopen(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE `+table+` SET status = 'pending', reviewed_by = NULL, review_date = NULL, review_notes = NULL
		WHERE id = $1 AND status = 'approved'`, id)
	n, err := affected("reopen request", res, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}
