package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationNotified  ReservationStatus = "notified"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationNotified, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the reservation still counts against the holder.
func (s ReservationStatus) IsOpen() bool {
	return s == ReservationPending || s == ReservationNotified
}

type Reservation struct {
	ID               string            `db:"id"`
	UserID           string            `db:"user_id"`
	BookID           string            `db:"book_id"`
	Status           ReservationStatus `db:"status"`
	ReservationDate  time.Time         `db:"reservation_date"`
	NotificationDate *time.Time        `db:"notification_date"`
	ExpirationDate   *time.Time        `db:"expiration_date"`
}

// Expired reports whether a notified reservation's pickup window has passed.
func (r Reservation) Expired(now time.Time) bool {
	return r.Status == ReservationNotified && r.ExpirationDate != nil && r.ExpirationDate.Before(now)
}

type ReservationDetails struct {
	Reservation
	UserName  string `db:"user_name"`
	BookTitle string `db:"book_title"`
}

type ReservationFilter struct {
	UserID string
	BookID string
	Status ReservationStatus
}

// ExpiryOutcome reports one expired reservation and the reservation that
// took its place, if any.
type ExpiryOutcome struct {
	Expired  Reservation
	Promoted *Reservation
}
