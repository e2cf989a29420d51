package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"
)

const dialectPostgres = "postgres"

// PostgreSQL error codes
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
)

const constraintOneActiveLoan = "loans_one_active_per_book"

// SQLRepository implements ports.LibraryRepository on PostgreSQL. Reads
// scan through sqlx; filtered listings are built with goqu.
type SQLRepository struct {
	db      *sqlx.DB
	builder goqu.DialectWrapper
}

var _ ports.LibraryRepository = (*SQLRepository)(nil)

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{
		db:      sqlx.NewDb(db, dialectPostgres),
		builder: goqu.Dialect(dialectPostgres),
	}
}

// withTx runs fn in a transaction and commits if fn returns nil.
func (r *SQLRepository) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Storage(op, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Storage(op, err)
	}
	return nil
}

// enqueue writes an outbox record in tx. The insert trigger notifies the
// relay on outbox_channel.
func enqueue(ctx context.Context, tx *sqlx.Tx, eventType, aggregateType, aggregateID string, payload any) error {
	body, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		return domain.Storage("encode "+eventType, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_events (id, event_type, aggregate_type, aggregate_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.NewString(), eventType, aggregateType, aggregateID, string(body), time.Now().UTC())
	if err != nil {
		return domain.Storage("enqueue "+eventType, err)
	}
	return nil
}

// get scans a single row into dest and returns notFound when there is none.
func get(ctx context.Context, q sqlx.QueryerContext, dest any, notFound error, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows), pqCode(err) == codeInvalidText:
		return notFound
	default:
		return domain.Storage("query", err)
	}
}

// selectAll runs a goqu dataset as a prepared statement and scans every row.
func (r *SQLRepository) selectAll(ctx context.Context, op string, dest any, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return domain.Storage(op, err)
	}
	if err := r.db.SelectContext(ctx, dest, query, args...); err != nil {
		return storageError(op, err)
	}
	return nil
}

// storageError turns driver errors into domain errors. Errors that are
// already domain errors pass through.
func storageError(op string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUniqueViolation:
			if pqErr.Constraint == constraintOneActiveLoan {
				return domain.ErrAlreadyBorrowed
			}
			return domain.ErrDuplicateIdentity
		case codeCheckViolation:
			return domain.Invalid("value violates constraint " + pqErr.Constraint)
		case codeInvalidText:
			return domain.Invalid("malformed identifier")
		}
	}
	return domain.Storage(op, err)
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// affected reports the number of rows changed by res.
func affected(op string, res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, storageError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.Storage(op, err)
	}
	return n, nil
}

// exists reports whether a row with id is present in table.
func exists(ctx context.Context, q sqlx.QueryerContext, table, id string) (bool, error) {
	var found bool
	err := sqlx.GetContext(ctx, q, &found, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id)
	if err != nil {
		if pqCode(err) == codeInvalidText {
			return false, nil
		}
		return false, domain.Storage("lookup "+table, err)
	}
	return found, nil
}
