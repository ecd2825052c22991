package plan

import (
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a billing tier definition. Read-mostly reference data; updated
// only by administrative action.
type Plan struct {
	ID               string             `db:"id" json:"id"`
	Name             string             `db:"name" json:"name"`
	DisplayName      string             `db:"display_name" json:"display_name"`
	AmountCents      int64              `db:"amount_cents" json:"amount_cents"`
	Currency         string             `db:"currency" json:"currency"`
	Interval         types.PlanInterval `db:"interval" json:"interval"`
	CreditsPerMonth  decimal.Decimal    `db:"credits_per_month" json:"credits_per_month"`
	TrialDays        int                `db:"trial_days" json:"trial_days"`
	TrialAmountCents int64              `db:"trial_amount_cents" json:"trial_amount_cents"`
	TrialCredits     decimal.Decimal    `db:"trial_credits" json:"trial_credits"`
	IsActive         bool               `db:"is_active" json:"is_active"`
	types.BaseModel
}

func (p *Plan) TableName() string {
	return "plans"
}

func (p *Plan) Validate() error {
	if p.Name == "" {
		return ierr.NewError("plan name is required").
			WithHint("Plan name must be set").
			Mark(ierr.ErrValidation)
	}

	if err := p.Interval.Validate(); err != nil {
		return err
	}

	if !p.CreditsPerMonth.IsPositive() {
		return ierr.NewError("credits_per_month must be greater than 0").
			WithHint("Every plan grants a positive monthly credit allotment").
			WithReportableDetails(map[string]interface{}{
				"plan":              p.Name,
				"credits_per_month": p.CreditsPerMonth,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.TrialDays < 0 || p.TrialCredits.IsNegative() {
		return ierr.NewError("trial terms cannot be negative").
			WithReportableDetails(map[string]interface{}{
				"plan":          p.Name,
				"trial_days":    p.TrialDays,
				"trial_credits": p.TrialCredits,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
