package types

import (
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/samber/lo"
)

// PlanInterval is the billing cadence of a plan
type PlanInterval string

const (
	PlanIntervalMonth PlanInterval = "month"
	PlanIntervalYear  PlanInterval = "year"
)

func (i PlanInterval) Validate() error {
	allowed := []PlanInterval{
		PlanIntervalMonth,
		PlanIntervalYear,
	}
	if !lo.Contains(allowed, i) {
		return ierr.NewError("invalid plan interval").
			WithHint("Plan interval must be month or year").
			WithReportableDetails(map[string]any{
				"interval": i,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
