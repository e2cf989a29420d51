package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
)

// CheckReservation decides whether a user may place a new reservation.
// open holds the user's reservations; closed ones are ignored.
func CheckReservation(open []domain.Reservation, bookID string, settings Settings) Decision {
	if decision := CheckReservationLimit(open, settings); !decision.Allowed {
		return decision
	}
	for _, r := range open {
		if r.Status.IsOpen() && r.BookID == bookID {
			return deny(domain.Violation(domain.ReasonDuplicateReservation,
				"user already has an open reservation for this book"))
		}
	}
	return allow()
}

// CheckReservationLimit applies the per-user cap on open reservations.
func CheckReservationLimit(open []domain.Reservation, settings Settings) Decision {
	count := 0
	for _, r := range open {
		if r.Status.IsOpen() {
			count++
		}
	}
	if count >= settings.MaxActiveReservations {
		return deny(domain.Violation(domain.ReasonReservationLimitReached,
			fmt.Sprintf("reservation limit of %d reached", settings.MaxActiveReservations)))
	}
	return allow()
}

// NextInQueue returns the oldest pending reservation, or nil. Ties on
// reservation date go to the lower id, the same order the repository's
// ORDER BY reservation_date, id uses when promoting.
func NextInQueue(reservations []domain.Reservation) *domain.Reservation {
	pending := make([]domain.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.Status == domain.ReservationPending {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].ReservationDate.Equal(pending[j].ReservationDate) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].ReservationDate.Before(pending[j].ReservationDate)
	})
	next := pending[0]
	return &next
}

// Notify stamps r as notified at now with a pickup window.
func Notify(r domain.Reservation, now time.Time, settings Settings) domain.Reservation {
	expires := now.Add(settings.PickupWindow)
	notified := now
	r.Status = domain.ReservationNotified
	r.NotificationDate = &notified
	r.ExpirationDate = &expires
	return r
}

var transitions = map[domain.ReservationStatus][]domain.ReservationStatus{
	domain.ReservationPending:  {domain.ReservationNotified, domain.ReservationCancelled},
	domain.ReservationNotified: {domain.ReservationCompleted, domain.ReservationCancelled},
}

// CanTransition reports whether a reservation may move from one status to
// another. Completed and cancelled are final.
func CanTransition(from, to domain.ReservationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
