package dto

import (
	"time"

	"github.com/renderbase/renderbase/internal/domain/subscription"
	"github.com/renderbase/renderbase/internal/types"
)

// SubscriptionResponse represents a subscription in API responses
type SubscriptionResponse struct {
	ID                      string                   `json:"id"`
	AccountID               string                   `json:"account_id"`
	PlanID                  *string                  `json:"plan_id"`
	ExternalCustomerRef     string                   `json:"external_customer_ref"`
	ExternalSubscriptionRef string                   `json:"external_subscription_ref"`
	SubscriptionStatus      types.SubscriptionStatus `json:"subscription_status"`
	CurrentPeriodStart      time.Time                `json:"current_period_start"`
	CurrentPeriodEnd        time.Time                `json:"current_period_end"`
	LastCreditReset         *time.Time               `json:"last_credit_reset,omitempty"`
	CreatedAt               time.Time                `json:"created_at"`
	UpdatedAt               time.Time                `json:"updated_at"`
}

// NewSubscriptionResponse converts a subscription to its API view
func NewSubscriptionResponse(s *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                      s.ID,
		AccountID:               s.AccountID,
		PlanID:                  s.PlanID,
		ExternalCustomerRef:     s.ExternalCustomerRef,
		ExternalSubscriptionRef: s.ExternalSubscriptionRef,
		SubscriptionStatus:      s.SubscriptionStatus,
		CurrentPeriodStart:      s.CurrentPeriodStart,
		CurrentPeriodEnd:        s.CurrentPeriodEnd,
		LastCreditReset:         s.LastCreditReset,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
}

// ProcessBillingEventResponse summarises what reconciliation did with an
// inbound billing event
type ProcessBillingEventResponse struct {
	Subscription   *SubscriptionResponse `json:"subscription"`
	TrialGranted   bool                  `json:"trial_granted"`
	CreditsReset   bool                  `json:"credits_reset"`
	EventDuplicate bool                  `json:"event_duplicate"`
}
