package rules

import (
	"testing"
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func Test_DueDate(t *testing.T) {
	tests := []struct {
		name string
		role domain.Role
		tag  domain.Tag
		want time.Time
	}{
		{"teacher white", domain.RoleTeacher, domain.TagWhite, now.AddDate(0, 0, 15)},
		{"student white", domain.RoleStudent, domain.TagWhite, now.AddDate(0, 0, 5)},
		{"staff white", domain.RoleStaff, domain.TagWhite, now.AddDate(0, 0, 5)},
		{"teacher yellow", domain.RoleTeacher, domain.TagYellow, now.AddDate(0, 0, 1)},
		{"student yellow", domain.RoleStudent, domain.TagYellow, now.AddDate(0, 0, 1)},
		{"staff yellow", domain.RoleStaff, domain.TagYellow, now.AddDate(0, 0, 1)},
		{"red is zero", domain.RoleTeacher, domain.TagRed, now},
		{"unknown tag fails closed", domain.RoleTeacher, domain.Tag("blue"), now},
		{"admin has no white-tag policy", domain.RoleAdmin, domain.TagWhite, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueDate(tt.role, tt.tag, now))
		})
	}
}

func Test_CalculateFine(t *testing.T) {
	perDay := decimal.NewFromInt(500)
	due := now

	tests := []struct {
		name     string
		returned time.Time
		days     int
		amount   int64
	}{
		{"early", due.Add(-48 * time.Hour), 0, 0},
		{"on time", due, 0, 0},
		{"less than a day late", due.Add(23 * time.Hour), 0, 0},
		{"exactly one day", due.Add(24 * time.Hour), 1, 500},
		{"three days", due.AddDate(0, 0, 3), 3, 1500},
		{"floors partial days", due.Add(75 * time.Hour), 3, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateFine(due, tt.returned, perDay)
			assert.Equal(t, tt.days, got.DaysOverdue)
			assert.True(t, got.Amount.Equal(decimal.NewFromInt(tt.amount)), "amount %s", got.Amount)
		})
	}
}

func eligibleSnapshot() EligibilitySnapshot {
	return EligibilitySnapshot{
		User: &domain.User{ID: "u1", Role: domain.RoleStudent, IsActive: true},
		Book: &domain.Book{ID: "b1", Title: "Calculus", Tag: domain.TagWhite, TotalCopies: 2, AvailableCopies: 1},
	}
}

func Test_CheckEligibility(t *testing.T) {
	settings := DefaultSettings()

	tests := []struct {
		name   string
		mutate func(*EligibilitySnapshot)
		reason domain.Reason
	}{
		{"allowed", func(*EligibilitySnapshot) {}, ""},
		{"missing user", func(s *EligibilitySnapshot) { s.User = nil }, domain.ReasonUserNotFound},
		{"inactive user", func(s *EligibilitySnapshot) { s.User.IsActive = false }, domain.ReasonUserInactive},
		{"missing book", func(s *EligibilitySnapshot) { s.Book = nil }, domain.ReasonBookNotFound},
		{"no copies", func(s *EligibilitySnapshot) { s.Book.AvailableCopies = 0 }, domain.ReasonBookUnavailable},
		{"red tag", func(s *EligibilitySnapshot) { s.Book.Tag = domain.TagRed }, domain.ReasonLibraryUseOnly},
		{"fines at threshold", func(s *EligibilitySnapshot) { s.PendingFines = decimal.NewFromInt(2000) }, domain.ReasonFinesBlockLoans},
		{"fines below threshold", func(s *EligibilitySnapshot) { s.PendingFines = decimal.NewFromInt(1500) }, ""},
		{"admin cannot borrow", func(s *EligibilitySnapshot) { s.User.Role = domain.RoleAdmin }, domain.ReasonRoleCannotBorrow},
		{"student at limit", func(s *EligibilitySnapshot) {
			s.ActiveLoans = []domain.ActiveLoan{{BookID: "x", Title: "A"}, {BookID: "y", Title: "B"}}
		}, domain.ReasonLoanLimitReached},
		{"teacher below limit", func(s *EligibilitySnapshot) {
			s.User.Role = domain.RoleTeacher
			s.ActiveLoans = []domain.ActiveLoan{{BookID: "x", Title: "A"}, {BookID: "y", Title: "B"}, {BookID: "z", Title: "C"}}
		}, ""},
		{"teacher at limit", func(s *EligibilitySnapshot) {
			s.User.Role = domain.RoleTeacher
			s.ActiveLoans = []domain.ActiveLoan{{BookID: "w", Title: "D"}, {BookID: "x", Title: "A"}, {BookID: "y", Title: "B"}, {BookID: "z", Title: "C"}}
		}, domain.ReasonLoanLimitReached},
		{"same book", func(s *EligibilitySnapshot) {
			s.ActiveLoans = []domain.ActiveLoan{{BookID: "b1", Title: "Calculus"}}
		}, domain.ReasonAlreadyBorrowed},
		{"same title other copy", func(s *EligibilitySnapshot) {
			s.ActiveLoans = []domain.ActiveLoan{{BookID: "b2", Title: " calculus "}}
		}, domain.ReasonDuplicateTitle},
		{"teacher same title", func(s *EligibilitySnapshot) {
			s.User.Role = domain.RoleTeacher
			s.ActiveLoans = []domain.ActiveLoan{{BookID: "b2", Title: "Calculus"}}
		}, domain.ReasonDuplicateTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := eligibleSnapshot()
			tt.mutate(&s)

			d := CheckEligibility(s, settings)

			if tt.reason == "" {
				assert.True(t, d.Allowed)
				assert.NoError(t, d.Err())
				return
			}
			assert.False(t, d.Allowed)
			assert.Equal(t, tt.reason, d.Reason())
		})
	}
}

func Test_CheckEligibility_FirstFailureWins(t *testing.T) {
	s := eligibleSnapshot()
	s.Book.AvailableCopies = 0
	s.Book.Tag = domain.TagRed
	s.PendingFines = decimal.NewFromInt(5000)

	d := CheckEligibility(s, DefaultSettings())

	assert.Equal(t, domain.ReasonBookUnavailable, d.Reason())
	assert.Equal(t, domain.KindRuleViolation, domain.KindOf(d.Err()))
}

func Test_CheckEligibility_MissingEntitiesAreNotFound(t *testing.T) {
	s := eligibleSnapshot()
	s.Book = nil

	err := CheckEligibility(s, DefaultSettings()).Err()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func Test_CheckRenewal(t *testing.T) {
	settings := DefaultSettings()
	base := func() RenewalSnapshot {
		return RenewalSnapshot{
			Loan: domain.Loan{ID: "l1", UserID: "u1", BookID: "b1", Status: domain.LoanActive, DueDate: now},
			Role: domain.RoleStudent,
			Tag:  domain.TagWhite,
		}
	}

	tests := []struct {
		name   string
		mutate func(*RenewalSnapshot)
		reason domain.Reason
	}{
		{"allowed", func(*RenewalSnapshot) {}, ""},
		{"returned loan", func(s *RenewalSnapshot) { s.Loan.Status = domain.LoanReturned }, domain.ReasonLoanNotActive},
		{"cap reached", func(s *RenewalSnapshot) { s.Loan.RenewalCount = 2 }, domain.ReasonRenewalLimitReached},
		{"cap beats everything else", func(s *RenewalSnapshot) {
			s.Loan.RenewalCount = 2
			s.PendingFines = decimal.NewFromInt(1)
			s.Reservations = []domain.Reservation{{UserID: "u2", Status: domain.ReservationPending}}
		}, domain.ReasonRenewalLimitReached},
		{"another reader pending", func(s *RenewalSnapshot) {
			s.Reservations = []domain.Reservation{{UserID: "u2", Status: domain.ReservationPending}}
		}, domain.ReasonReservationQueue},
		{"another reader notified", func(s *RenewalSnapshot) {
			s.Reservations = []domain.Reservation{{UserID: "u2", Status: domain.ReservationNotified}}
		}, domain.ReasonReservationQueue},
		{"own reservation does not block", func(s *RenewalSnapshot) {
			s.Reservations = []domain.Reservation{{UserID: "u1", Status: domain.ReservationPending}}
		}, ""},
		{"cancelled reservation does not block", func(s *RenewalSnapshot) {
			s.Reservations = []domain.Reservation{{UserID: "u2", Status: domain.ReservationCancelled}}
		}, ""},
		{"any pending fine blocks", func(s *RenewalSnapshot) { s.PendingFines = decimal.NewFromInt(1) }, domain.ReasonPendingFines},
		{"book retagged red", func(s *RenewalSnapshot) { s.Tag = domain.TagRed }, domain.ReasonLibraryUseOnly},
		{"yellow renews", func(s *RenewalSnapshot) { s.Tag = domain.TagYellow }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)

			d := CheckRenewal(s, settings)

			if tt.reason == "" {
				assert.True(t, d.Allowed)
				return
			}
			assert.Equal(t, tt.reason, d.Reason())
		})
	}
}

func Test_CheckRenewal_NotActiveIsInvalidState(t *testing.T) {
	s := RenewalSnapshot{Loan: domain.Loan{Status: domain.LoanReturned}}

	err := CheckRenewal(s, DefaultSettings()).Err()

	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
}

func Test_CheckReservation(t *testing.T) {
	settings := DefaultSettings()
	open := func(book string) domain.Reservation {
		return domain.Reservation{BookID: book, Status: domain.ReservationPending}
	}

	tests := []struct {
		name     string
		existing []domain.Reservation
		reason   domain.Reason
	}{
		{"first reservation", nil, ""},
		{"two open", []domain.Reservation{open("a"), open("b")}, ""},
		{"cap reached", []domain.Reservation{open("a"), open("b"), open("c")}, domain.ReasonReservationLimitReached},
		{"closed ones ignored", []domain.Reservation{
			open("a"), open("b"),
			{BookID: "c", Status: domain.ReservationCancelled},
			{BookID: "d", Status: domain.ReservationCompleted},
		}, ""},
		{"duplicate book", []domain.Reservation{open("target")}, domain.ReasonDuplicateReservation},
		{"duplicate notified", []domain.Reservation{{BookID: "target", Status: domain.ReservationNotified}}, domain.ReasonDuplicateReservation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckReservation(tt.existing, "target", settings)
			if tt.reason == "" {
				assert.True(t, d.Allowed)
				return
			}
			assert.Equal(t, tt.reason, d.Reason())
		})
	}
}

func Test_CheckReservationLimit_IgnoresBook(t *testing.T) {
	settings := DefaultSettings()
	open := make([]domain.Reservation, 0, settings.MaxActiveReservations)
	for i := range settings.MaxActiveReservations {
		open = append(open, domain.Reservation{ID: string(rune('a' + i)), BookID: "other", Status: domain.ReservationPending})
	}

	assert.False(t, CheckReservationLimit(open, settings).Allowed)
	assert.True(t, CheckReservationLimit(open[1:], settings).Allowed)
}

func Test_NextInQueue(t *testing.T) {
	reservations := []domain.Reservation{
		{ID: "late", Status: domain.ReservationPending, ReservationDate: now.Add(time.Hour)},
		{ID: "notified", Status: domain.ReservationNotified, ReservationDate: now.Add(-2 * time.Hour)},
		{ID: "early-b", Status: domain.ReservationPending, ReservationDate: now},
		{ID: "early-a", Status: domain.ReservationPending, ReservationDate: now},
	}

	next := NextInQueue(reservations)

	require.NotNil(t, next)
	assert.Equal(t, "early-a", next.ID)
	assert.Nil(t, NextInQueue(nil))
}

func Test_Notify(t *testing.T) {
	r := Notify(domain.Reservation{ID: "r1", Status: domain.ReservationPending}, now, DefaultSettings())

	assert.Equal(t, domain.ReservationNotified, r.Status)
	require.NotNil(t, r.NotificationDate)
	require.NotNil(t, r.ExpirationDate)
	assert.Equal(t, now, *r.NotificationDate)
	assert.Equal(t, now.Add(48*time.Hour), *r.ExpirationDate)
	assert.False(t, r.Expired(now.Add(47*time.Hour)))
	assert.True(t, r.Expired(now.Add(49*time.Hour)))
}

func Test_CanTransition(t *testing.T) {
	assert.True(t, CanTransition(domain.ReservationPending, domain.ReservationNotified))
	assert.True(t, CanTransition(domain.ReservationPending, domain.ReservationCancelled))
	assert.True(t, CanTransition(domain.ReservationNotified, domain.ReservationCompleted))
	assert.True(t, CanTransition(domain.ReservationNotified, domain.ReservationCancelled))
	assert.False(t, CanTransition(domain.ReservationNotified, domain.ReservationPending))
	assert.False(t, CanTransition(domain.ReservationPending, domain.ReservationCompleted))
	assert.False(t, CanTransition(domain.ReservationCancelled, domain.ReservationPending))
	assert.False(t, CanTransition(domain.ReservationCompleted, domain.ReservationCancelled))
}
