// Package rules holds the circulation rules of the library as pure
// functions over read-only snapshots. Nothing in here touches storage or
// the clock; callers pass both in.
package rules

import (
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Policy is the lending policy attached to a role.
type Policy struct {
	MaxBooks         int
	WhiteTagLoanDays int
	UniqueTitlesOnly bool
}

var policies = map[domain.Role]Policy{
	domain.RoleTeacher: {MaxBooks: 4, WhiteTagLoanDays: 15, UniqueTitlesOnly: true},
	domain.RoleStudent: {MaxBooks: 2, WhiteTagLoanDays: 5, UniqueTitlesOnly: true},
	domain.RoleStaff:   {MaxBooks: 2, WhiteTagLoanDays: 5, UniqueTitlesOnly: true},
}

// PolicyFor returns the lending policy for role. Roles without an entry
// (admin) cannot borrow.
func PolicyFor(role domain.Role) (Policy, bool) {
	p, ok := policies[role]
	return p, ok
}

const yellowTagLoanDays = 1

// Settings are the tunable thresholds of the rule engine.
type Settings struct {
	FinePerDay            decimal.Decimal
	FineBlockThreshold    decimal.Decimal
	MaxRenewals           int
	MaxActiveReservations int
	PickupWindow          time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		FinePerDay:            decimal.NewFromInt(500),
		FineBlockThreshold:    decimal.NewFromInt(2000),
		MaxRenewals:           2,
		MaxActiveReservations: 3,
		PickupWindow:          48 * time.Hour,
	}
}
