package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/scheduler"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/rules"
	"github.com/AchilleasB/campus-library/library-service/internal/core/services"
	"github.com/AchilleasB/campus-library/library-service/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweep_ExpiresAndPromotes(t *testing.T) {
	repo := mocks.NewMockLibraryRepository()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	clock := mocks.NewClock(now)
	notifiedAt := now.Add(-72 * time.Hour)
	expiredAt := now.Add(-24 * time.Hour)
	repo.SeedReservation(domain.Reservation{
		ID: "stale", UserID: "u1", BookID: "b", Status: domain.ReservationNotified,
		ReservationDate: notifiedAt.Add(-time.Hour), NotificationDate: &notifiedAt, ExpirationDate: &expiredAt,
	})
	repo.SeedReservation(domain.Reservation{
		ID: "next", UserID: "u2", BookID: "b", Status: domain.ReservationPending, ReservationDate: notifiedAt,
	})
	svc := services.NewReservationService(repo, rules.DefaultSettings(), services.WithClock(clock.Now))
	sweeper := scheduler.NewReservationSweeper(svc, time.Hour)

	n, err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.ReservationCancelled, repo.Reservation("stale").Status)
	assert.Equal(t, domain.ReservationNotified, repo.Reservation("next").Status)

	n, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

type countingExpirer struct {
	calls chan struct{}
	err   error
}

func (c *countingExpirer) ExpireNotified(context.Context) ([]domain.ExpiryOutcome, error) {
	c.calls <- struct{}{}
	return nil, c.err
}

func TestStart_StopsOnCancel(t *testing.T) {
	expirer := &countingExpirer{calls: make(chan struct{}, 16), err: errors.New("db down")}
	sweeper := scheduler.NewReservationSweeper(expirer, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sweeper.Start(ctx) }()

	// a failing sweep does not stop the loop
	for range 2 {
		select {
		case <-expirer.calls:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not run")
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
