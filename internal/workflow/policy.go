package workflow

import (
	"fmt"

	"drugtrack/m/domain"
)

// TransitionPolicy decides whether next may be stamped on line.
type TransitionPolicy interface {
	Allow(line domain.OrderLine, next domain.Status) error
}

// Lenient allows any status at any time, in any order.
type Lenient struct{}

func (Lenient) Allow(domain.OrderLine, domain.Status) error { return nil }

// ForwardOnly refuses a status ranked below the line's final status.
// Re-stamping the current status is allowed.
type ForwardOnly struct{}

func (ForwardOnly) Allow(line domain.OrderLine, next domain.Status) error {
	if line.FinalStatus == "" {
		return nil
	}
	if next.Rank() < line.FinalStatus.Rank() {
		return fmt.Errorf("%w: %s/%s is %s, cannot set %s",
			ErrStatusRegression, line.OrderID, line.DrugName, line.FinalStatus, next)
	}
	return nil
}
