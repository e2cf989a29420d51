package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/AchilleasB/campus-library/library-service/internal/core/rules"
	"github.com/google/uuid"
)

type ReservationService struct {
	repo     ports.LibraryRepository
	settings rules.Settings
	opts     options
}

var _ ports.ReservationService = (*ReservationService)(nil)

func NewReservationService(repo ports.LibraryRepository, settings rules.Settings, opts ...Option) *ReservationService {
	return &ReservationService{
		repo:     repo,
		settings: settings,
		opts:     buildOptions(opts),
	}
}

func (s *ReservationService) CreateReservation(ctx context.Context, userID, bookID string) (*domain.Reservation, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(bookID) == "" {
		return nil, domain.Invalid("userId and bookId are required")
	}

	user, err := s.repo.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.Violation(domain.ReasonUserInactive, "user account is inactive")
	}

	open, err := s.repo.OpenReservations(ctx, domain.ReservationFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	if decision := rules.CheckReservationLimit(open, s.settings); !decision.Allowed {
		return nil, decision.Err()
	}
	if _, err := s.repo.FindBook(ctx, bookID); err != nil {
		return nil, err
	}
	if decision := rules.CheckReservation(open, bookID, s.settings); !decision.Allowed {
		return nil, decision.Err()
	}

	reservation := domain.Reservation{
		ID:              uuid.NewString(),
		UserID:          userID,
		BookID:          bookID,
		Status:          domain.ReservationPending,
		ReservationDate: s.opts.now(),
	}
	if err := s.repo.CreateReservation(ctx, reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.repo.FindReservation(ctx, id)
}

func (s *ReservationService) ListReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.ReservationDetails, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("unknown reservation status")
	}
	return s.repo.ListReservations(ctx, filter)
}

// UpdateStatus moves a reservation along its state machine. Closing a
// notified reservation offers the book to the next reader in line.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, to domain.ReservationStatus) (*domain.Reservation, error) {
	if !to.Valid() {
		return nil, domain.Invalid("unknown reservation status")
	}

	current, err := s.repo.FindReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rules.CanTransition(current.Status, to) {
		return nil, domain.InvalidState(domain.ReasonInvalidTransition,
			fmt.Sprintf("reservation cannot move from %s to %s", current.Status, to))
	}

	next := *current
	if current.Status == domain.ReservationNotified {
		next.Status = to
		now := s.opts.now()
		promoted, err := s.repo.ReleaseReservation(ctx, next, now, now.Add(s.settings.PickupWindow))
		if err != nil {
			return nil, err
		}
		if promoted != nil {
			s.opts.metrics.ReservationPromoted()
			log.Printf("reservation service: reservation %s %s, notified %s", id, to, promoted.ID)
		}
		return &next, nil
	}

	if to == domain.ReservationNotified {
		next = rules.Notify(next, s.opts.now(), s.settings)
	} else {
		next.Status = to
	}

	if err := s.repo.UpdateReservation(ctx, next, current.Status); err != nil {
		return nil, err
	}
	return &next, nil
}

// ExpireNotified cancels notified reservations whose pickup window has
// passed and offers each book to the next reader in line.
func (s *ReservationService) ExpireNotified(ctx context.Context) ([]domain.ExpiryOutcome, error) {
	now := s.opts.now()

	expired, err := s.repo.ExpiredReservations(ctx, now)
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.ExpiryOutcome, 0, len(expired))
	for _, r := range expired {
		outcome, err := s.repo.ExpireReservation(ctx, r.ID, now, now.Add(s.settings.PickupWindow))
		if err != nil {
			if errors.Is(err, domain.ErrReservationNotFound) || domain.KindOf(err) == domain.KindInvalidState {
				// picked up or cancelled since the scan
				continue
			}
			return outcomes, err
		}

		s.opts.metrics.ReservationExpired()
		if outcome.Promoted != nil {
			s.opts.metrics.ReservationPromoted()
		}
		outcomes = append(outcomes, *outcome)
	}

	if len(outcomes) > 0 {
		log.Printf("reservation service: expired %d notified reservations", len(outcomes))
	}
	return outcomes, nil
}
