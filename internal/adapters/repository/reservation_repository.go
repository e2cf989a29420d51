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

const reservationColumns = "id, user_id, book_id, status, reservation_date, notification_date, expiration_date"

var openStatuses = []string{string(domain.ReservationPending), string(domain.ReservationNotified)}

func (r *SQLRepository) FindReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	var reservation domain.Reservation
	if err := get(ctx, r.db, &reservation, domain.ErrReservationNotFound,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *SQLRepository) ListReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationDetails, error) {
	ds := r.builder.From(goqu.T("reservations").As("r")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.user_id")))).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("r.book_id")))).
		Select(
			goqu.I("r.id"), goqu.I("r.user_id"), goqu.I("r.book_id"), goqu.I("r.status"),
			goqu.I("r.reservation_date"), goqu.I("r.notification_date"), goqu.I("r.expiration_date"),
			goqu.I("u.name").As("user_name"),
			goqu.I("b.title").As("book_title"),
		).
		Order(goqu.I("r.reservation_date").Asc())
	ds = reservationFilter(ds, "r.", filter)

	reservations := make([]domain.ReservationDetails, 0)
	if err := r.selectAll(ctx, "list reservations", &reservations, ds); err != nil {
		return nil, err
	}
	return reservations, nil
}

// OpenReservations returns pending and notified reservations, oldest first.
func (r *SQLRepository) OpenReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	ds := r.builder.From("reservations").
		Select(goqu.L(reservationColumns)).
		Where(goqu.C("status").In(openStatuses)).
		Order(goqu.C("reservation_date").Asc(), goqu.C("id").Asc())
	ds = reservationFilter(ds, "", filter)

	reservations := make([]domain.Reservation, 0)
	if err := r.selectAll(ctx, "open reservations", &reservations, ds); err != nil {
		return nil, err
	}
	return reservations, nil
}

func reservationFilter(ds *goqu.SelectDataset, prefix string, filter domain.ReservationFilter) *goqu.SelectDataset {
	if filter.UserID != "" {
		ds = ds.Where(goqu.I(prefix + "user_id").Eq(filter.UserID))
	}
	if filter.BookID != "" {
		ds = ds.Where(goqu.I(prefix + "book_id").Eq(filter.BookID))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.I(prefix + "status").Eq(string(filter.Status)))
	}
	return ds
}

func (r *SQLRepository) CreateReservation(ctx context.Context, reservation domain.Reservation) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO reservations (id, user_id, book_id, status, reservation_date)
		VALUES (:id, :user_id, :book_id, :status, :reservation_date)`, reservation)
	if err != nil {
		return storageError("create reservation", err)
	}
	return nil
}

func (r *SQLRepository) UpdateReservation(ctx context.Context, res domain.Reservation, from domain.ReservationStatus) error {
	return r.withTx(ctx, "update reservation", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE reservations SET status = $3, notification_date = $4, expiration_date = $5
			WHERE id = $1 AND status = $2`,
			res.ID, from, res.Status, res.NotificationDate, res.ExpirationDate)
		n, err := affected("update reservation", result, err)
		if err != nil {
			return err
		}
		if n == 0 {
			found, err := exists(ctx, tx, "reservations", res.ID)
			if err != nil {
				return err
			}
			if !found {
				return domain.ErrReservationNotFound
			}
			return domain.InvalidState(domain.ReasonInvalidTransition, "reservation was modified concurrently")
		}

		if res.Status == domain.ReservationNotified {
			return enqueue(ctx, tx, domain.EventReservationNotified, "reservation", res.ID, domain.ReservationEvent{
				ReservationID: res.ID,
				UserID:        res.UserID,
				BookID:        res.BookID,
				ExpiresAt:     res.ExpirationDate,
			})
		}
		return nil
	})
}

func (r *SQLRepository) ReleaseReservation(ctx context.Context, res domain.Reservation, now, pickupDeadline time.Time) (*domain.Reservation, error) {
	var promoted *domain.Reservation
	err := r.withTx(ctx, "release reservation", func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE reservations SET status = $2
			WHERE id = $1 AND status = 'notified'`, res.ID, res.Status)
		n, err := affected("release reservation", result, err)
		if err != nil {
			return err
		}
		if n == 0 {
			found, err := exists(ctx, tx, "reservations", res.ID)
			if err != nil {
				return err
			}
			if !found {
				return domain.ErrReservationNotFound
			}
			return domain.InvalidState(domain.ReasonInvalidTransition, "reservation was modified concurrently")
		}

		promoted, err = promoteNext(ctx, tx, res.BookID, now, pickupDeadline)
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

func (r *SQLRepository) ExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	reservations := make([]domain.Reservation, 0)
	err := r.db.SelectContext(ctx, &reservations, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE status = 'notified' AND expiration_date < $1
		ORDER BY expiration_date`, now)
	if err != nil {
		return nil, storageError("expired reservations", err)
	}
	return reservations, nil
}

// ExpireReservation cancels the reservation and promotes the next pending
// one for the same book in one transaction.
func (r *SQLRepository) ExpireReservation(ctx context.Context, id string, now, pickupDeadline time.Time) (*domain.ExpiryOutcome, error) {
	outcome := &domain.ExpiryOutcome{}

	err := r.withTx(ctx, "expire reservation", func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &outcome.Expired, `
			UPDATE reservations SET status = 'cancelled'
			WHERE id = $1 AND status = 'notified' AND expiration_date < $2
			RETURNING `+reservationColumns, id, now)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InvalidState(domain.ReasonInvalidTransition, "reservation is no longer awaiting pickup")
		}
		if err != nil {
			return storageError("expire reservation", err)
		}

		if err := enqueue(ctx, tx, domain.EventReservationExpired, "reservation", id, domain.ReservationEvent{
			ReservationID: id,
			UserID:        outcome.Expired.UserID,
			BookID:        outcome.Expired.BookID,
		}); err != nil {
			return err
		}

		promoted, err := promoteNext(ctx, tx, outcome.Expired.BookID, now, pickupDeadline)
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
