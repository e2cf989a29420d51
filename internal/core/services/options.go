package services

import (
	"time"

	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/ports"
	"github.com/shopspring/decimal"
)

// Option configures the circulation services.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics ports.CirculationMetrics
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func WithMetrics(m ports.CirculationMetrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type nopMetrics struct{}

func (nopMetrics) LoanCreated(domain.Role) {}
func (nopMetrics) LoanDenied(domain.Reason) {}
func (nopMetrics) LoanReturned(bool) {}
func (nopMetrics) LoanRenewed() {}
func (nopMetrics) FineAssessed(decimal.Decimal) {}
func (nopMetrics) FinePaid() {}
func (nopMetrics) ReservationPromoted() {}
func (nopMetrics) ReservationExpired() {}
