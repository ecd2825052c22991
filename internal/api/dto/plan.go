package dto

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/renderbase/renderbase/internal/domain/plan"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// CreatePlanRequest represents the request to create a new plan
type CreatePlanRequest struct {
	Name             string          `json:"name" binding:"required"`
	DisplayName      string          `json:"display_name" binding:"required"`
	AmountCents      int64           `json:"amount_cents"`
	Currency         string          `json:"currency" binding:"required"`
	Interval         string          `json:"interval" binding:"required"`
	CreditsPerMonth  decimal.Decimal `json:"credits_per_month"`
	TrialDays        int             `json:"trial_days"`
	TrialAmountCents int64           `json:"trial_amount_cents"`
	TrialCredits     decimal.Decimal `json:"trial_credits"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid plan request").
			Mark(ierr.ErrValidation)
	}
	return types.PlanInterval(r.Interval).Validate()
}

// ToPlan converts a create plan request to a plan
func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:             r.Name,
		DisplayName:      r.DisplayName,
		AmountCents:      r.AmountCents,
		Currency:         r.Currency,
		Interval:         types.PlanInterval(r.Interval),
		CreditsPerMonth:  r.CreditsPerMonth,
		TrialDays:        r.TrialDays,
		TrialAmountCents: r.TrialAmountCents,
		TrialCredits:     r.TrialCredits,
		IsActive:         true,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
}

// UpdatePlanRequest represents partial updates to a plan
type UpdatePlanRequest struct {
	DisplayName     *string          `json:"display_name,omitempty"`
	AmountCents     *int64           `json:"amount_cents,omitempty"`
	CreditsPerMonth *decimal.Decimal `json:"credits_per_month,omitempty"`
	TrialDays       *int             `json:"trial_days,omitempty"`
	TrialCredits    *decimal.Decimal `json:"trial_credits,omitempty"`
	IsActive        *bool            `json:"is_active,omitempty"`
}

// PlanResponse represents a plan in API responses
type PlanResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	DisplayName      string          `json:"display_name"`
	AmountCents      int64           `json:"amount_cents"`
	Currency         string          `json:"currency"`
	Interval         string          `json:"interval"`
	CreditsPerMonth  decimal.Decimal `json:"credits_per_month"`
	TrialDays        int             `json:"trial_days"`
	TrialAmountCents int64           `json:"trial_amount_cents"`
	TrialCredits     decimal.Decimal `json:"trial_credits"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewPlanResponse converts a plan to its API view
func NewPlanResponse(p *plan.Plan) *PlanResponse {
	return &PlanResponse{
		ID:               p.ID,
		Name:             p.Name,
		DisplayName:      p.DisplayName,
		AmountCents:      p.AmountCents,
		Currency:         p.Currency,
		Interval:         string(p.Interval),
		CreditsPerMonth:  p.CreditsPerMonth,
		TrialDays:        p.TrialDays,
		TrialAmountCents: p.TrialAmountCents,
		TrialCredits:     p.TrialCredits,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
