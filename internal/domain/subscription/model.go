package subscription

import (
	"time"

	"github.com/renderbase/renderbase/internal/types"
)

// Subscription is the local mirror of an account's subscription state in the
// external billing system. It is owned by the reconciliation engine; the
// last_credit_reset stamp is the de-duplication guard against re-granting
// credits for a period already processed.
type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// AccountID is the identifier for the account in our system
	AccountID string `db:"account_id" json:"account_id"`

	// PlanID is the identifier for the plan in our system; nullable because
	// the external system may reference a price we have not synced yet
	PlanID *string `db:"plan_id" json:"plan_id"`

	// ExternalCustomerRef is the customer identifier in the billing system
	ExternalCustomerRef string `db:"external_customer_ref" json:"external_customer_ref"`

	// ExternalSubscriptionRef is the subscription identifier in the billing
	// system; the upsert key for reconciliation
	ExternalSubscriptionRef string `db:"external_subscription_ref" json:"external_subscription_ref"`

	// SubscriptionStatus is the local status of the subscription
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`

	// CurrentPeriodStart is the start of the current billing period
	CurrentPeriodStart time.Time `db:"current_period_start" json:"current_period_start"`

	// CurrentPeriodEnd is the end of the current billing period
	CurrentPeriodEnd time.Time `db:"current_period_end" json:"current_period_end"`

	// LastCreditReset is the last time the account's credits were reset to
	// its plan allotment; nil before the first reset
	LastCreditReset *time.Time `db:"last_credit_reset" json:"last_credit_reset"`

	types.BaseModel
}

func (s *Subscription) TableName() string {
	return "subscriptions"
}

// IsResetDue reports whether the subscription has crossed into a billing
// period that its last credit reset does not cover yet.
func (s *Subscription) IsResetDue(now time.Time) bool {
	if s.CurrentPeriodStart.IsZero() || now.Before(s.CurrentPeriodStart) {
		return false
	}
	if s.LastCreditReset == nil {
		return true
	}
	if s.LastCreditReset.Before(s.CurrentPeriodStart) {
		return true
	}
	// Stale period: the renewal webhook never arrived, so the stored period
	// has already ended. A reset stamped inside that expired period does not
	// cover the time past its end; once the reset runs, the new stamp lands
	// at or after the period end and the subscription stops being due.
	return !s.CurrentPeriodEnd.IsZero() &&
		!now.Before(s.CurrentPeriodEnd) &&
		s.LastCreditReset.Before(s.CurrentPeriodEnd)
}
