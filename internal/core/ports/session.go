package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SessionStore tracks issued access tokens so they can be revoked before
// they expire.
type SessionStore interface {
	Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
	// RevokeUser drops every session issued to userID.
	RevokeUser(ctx context.Context, userID string) error
}

// StatsCache holds the last computed dashboard. GetStats returns nil, nil
// on a miss.
type StatsCache interface {
	GetStats(ctx context.Context) (*domain.DashboardStats, error)
	SetStats(ctx context.Context, stats *domain.DashboardStats, ttl time.Duration) error
}

// CirculationMetrics receives business counters from the services.
type CirculationMetrics interface {
	LoanCreated(role domain.Role)
	LoanDenied(reason domain.Reason)
	LoanReturned(late bool)
	LoanRenewed()
	FineAssessed(amount decimal.Decimal)
	FinePaid()
	ReservationPromoted()
	ReservationExpired()
}
