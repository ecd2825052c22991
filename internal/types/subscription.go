package types

import (
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the local status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusIncomplete,
		SubscriptionStatusTrialing,
		SubscriptionStatusActive,
		SubscriptionStatusPastDue,
		SubscriptionStatusCanceled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Subscription status is not one of the known states").
			WithReportableDetails(map[string]any{
				"status":  s,
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionStatusFromExternal maps the billing provider's status string
// onto the local enum. Provider statuses that have no local meaning
// (incomplete_expired, unpaid) collapse onto the nearest local state.
func SubscriptionStatusFromExternal(external string) (SubscriptionStatus, error) {
	switch external {
	case "incomplete":
		return SubscriptionStatusIncomplete, nil
	case "incomplete_expired":
		return SubscriptionStatusCanceled, nil
	case "trialing":
		return SubscriptionStatusTrialing, nil
	case "active":
		return SubscriptionStatusActive, nil
	case "past_due", "unpaid":
		return SubscriptionStatusPastDue, nil
	case "canceled":
		return SubscriptionStatusCanceled, nil
	default:
		return "", ierr.NewError("unknown external subscription status").
			WithHint("The billing provider reported a status this service does not understand").
			WithReportableDetails(map[string]any{
				"external_status": external,
			}).
			Mark(ierr.ErrValidation)
	}
}

// SubscriptionFilter narrows subscription listings
type SubscriptionFilter struct {
	AccountID            string               `json:"account_id,omitempty" form:"account_id"`
	SubscriptionStatuses []SubscriptionStatus `json:"subscription_statuses,omitempty" form:"subscription_statuses"`
}
