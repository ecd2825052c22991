package billing

import (
	"encoding/json"
	"time"

	"github.com/renderbase/renderbase/internal/config"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Subscription lifecycle events the reconciliation engine cares about.
// Everything else coming over the webhook is acknowledged and dropped.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// WebhookService verifies inbound Stripe webhooks and translates them into
// the normalized billing events the reconciliation engine consumes
type WebhookService struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// NewWebhookService creates a new instance of WebhookService
func NewWebhookService(cfg *config.Configuration, logger *logger.Logger) *WebhookService {
	return &WebhookService{
		cfg:    cfg,
		logger: logger,
	}
}

// ParseEvent verifies the webhook signature and decodes the event envelope
func (s *WebhookService) ParseEvent(payload []byte, signature string) (*stripe.Event, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.Billing.WebhookSecret, options)
	if err != nil {
		s.logger.Errorw("stripe webhook verification failed", "error", err)
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}

// IsSubscriptionEvent reports whether the event type carries subscription state
func IsSubscriptionEvent(event *stripe.Event) bool {
	switch string(event.Type) {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return true
	}
	return false
}

// ToBillingEvent extracts the normalized billing event from a subscription
// lifecycle webhook. The account ID travels in subscription metadata; the
// plan name in the price lookup key.
func (s *WebhookService) ToBillingEvent(event *stripe.Event) (*subscription.BillingEvent, error) {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode subscription payload").
			Mark(ierr.ErrValidation)
	}

	accountID := stripeSub.Metadata["account_id"]
	if accountID == "" {
		return nil, ierr.NewError("subscription metadata missing account_id").
			WithHint("Stripe subscriptions must carry the local account ID in metadata").
			WithReportableDetails(map[string]interface{}{
				"external_subscription_ref": stripeSub.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	billingEvent := &subscription.BillingEvent{
		AccountID:               accountID,
		ExternalSubscriptionRef: stripeSub.ID,
		Status:                  string(stripeSub.Status),
	}

	if stripeSub.Customer != nil {
		billingEvent.ExternalCustomerRef = stripeSub.Customer.ID
	}

	if stripeSub.Items != nil && len(stripeSub.Items.Data) > 0 {
		firstItem := stripeSub.Items.Data[0]
		if firstItem.Price != nil {
			billingEvent.PlanRef = firstItem.Price.LookupKey
		}
		if firstItem.CurrentPeriodStart != 0 {
			billingEvent.PeriodStart = time.Unix(firstItem.CurrentPeriodStart, 0).UTC()
		}
		if firstItem.CurrentPeriodEnd != 0 {
			billingEvent.PeriodEnd = time.Unix(firstItem.CurrentPeriodEnd, 0).UTC()
		}
	}

	return billingEvent, nil
}
