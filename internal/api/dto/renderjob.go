package dto

import (
	"github.com/go-playground/validator/v10"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// SubmitRenderJobRequest represents a request to run a render job against
// a configured provider
type SubmitRenderJobRequest struct {
	Provider string            `json:"provider" binding:"required"`
	Prompt   string            `json:"prompt" binding:"required"`
	Options  map[string]string `json:"options,omitempty"`
}

func (r *SubmitRenderJobRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid render job request").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubmitRenderJobResponse represents the outcome of a render job submission
type SubmitRenderJobResponse struct {
	JobID          string                `json:"job_id"`
	Provider       string                `json:"provider"`
	ProviderJobRef string                `json:"provider_job_ref,omitempty"`
	Status         types.RenderJobStatus `json:"status"`
	CreditsCharged decimal.Decimal       `json:"credits_charged"`
	Balance        decimal.Decimal       `json:"balance"`
}
