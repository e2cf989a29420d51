package rules

import "github.com/AchilleasB/campus-library/library-service/internal/core/domain"

// Decision is the outcome of a rule check. A denied decision carries the
// failure that explains it.
type Decision struct {
	Allowed bool
	Denial  *domain.Error
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(err *domain.Error) Decision {
	return Decision{Denial: err}
}

// Err returns nil for an allowed decision and the denial otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Denial
}

// Reason returns the denial reason, or "" when allowed.
func (d Decision) Reason() domain.Reason {
	if d.Allowed || d.Denial == nil {
		return ""
	}
	return d.Denial.Reason
}
