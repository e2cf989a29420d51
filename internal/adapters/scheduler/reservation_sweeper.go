package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
)

// Expirer is the part of the reservation service the sweeper drives.
type Expirer interface {
	ExpireNotified(ctx context.Context) ([]domain.ExpiryOutcome, error)
}

// ReservationSweeper cancels notified reservations whose pickup window has
// passed and hands the copy to the next reservation in line.
type ReservationSweeper struct {
	reservations Expirer
	interval     time.Duration
}

func NewReservationSweeper(reservations Expirer, interval time.Duration) *ReservationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReservationSweeper{reservations: reservations, interval: interval}
}

// Start sweeps once immediately and then on every tick until ctx is
// cancelled.
func (s *ReservationSweeper) Start(ctx context.Context) error {
	log.Printf("reservation sweeper: running every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil {
			log.Printf("reservation sweeper: sweep failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Println("reservation sweeper: shutting down...")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep runs a single pass and returns how many reservations expired.
func (s *ReservationSweeper) Sweep(ctx context.Context) (int, error) {
	outcomes, err := s.reservations.ExpireNotified(ctx)
	for _, o := range outcomes {
		if o.Promoted != nil {
			log.Printf("reservation sweeper: reservation %s expired, book %s offered to reservation %s",
				o.Expired.ID, o.Expired.BookID, o.Promoted.ID)
		} else {
			log.Printf("reservation sweeper: reservation %s expired, no one waiting for book %s",
				o.Expired.ID, o.Expired.BookID)
		}
	}
	return len(outcomes), err
}
