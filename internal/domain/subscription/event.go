package subscription

import (
	"time"

	ierr "github.com/renderbase/renderbase/internal/errors"
)

// BillingEvent is the normalized inbound notification from the external
// billing system. Events may be delivered more than once or out of order;
// the reconciliation engine dedupes by (external ref, period boundary).
type BillingEvent struct {
	AccountID               string    `json:"account_id"`
	ExternalSubscriptionRef string    `json:"external_subscription_ref"`
	ExternalCustomerRef     string    `json:"external_customer_ref"`
	Status                  string    `json:"status"`
	PlanRef                 string    `json:"plan_ref"`
	PeriodStart             time.Time `json:"period_start"`
	PeriodEnd               time.Time `json:"period_end"`
}

func (e *BillingEvent) Validate() error {
	if e.AccountID == "" {
		return ierr.NewError("account_id is required").
			WithHint("Billing events must carry the local account identifier").
			Mark(ierr.ErrValidation)
	}

	if e.ExternalSubscriptionRef == "" {
		return ierr.NewError("external_subscription_ref is required").
			WithHint("Billing events must carry the external subscription reference").
			Mark(ierr.ErrValidation)
	}

	if e.Status == "" {
		return ierr.NewError("status is required").
			WithHint("Billing events must carry the subscription status").
			Mark(ierr.ErrValidation)
	}

	return nil
}
