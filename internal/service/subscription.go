package service

import (
	"context"

	"github.com/renderbase/renderbase/internal/api/dto"
	"github.com/renderbase/renderbase/internal/domain/plan"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
)

// SubscriptionService reconciles inbound billing events against local
// subscription state and drives the credit side effects: one-time trial
// grants and credit resets on period rollover.
type SubscriptionService interface {
	// ProcessBillingEvent applies one normalized billing event. Events are
	// safe to redeliver: duplicates are logged and ignored, and the trial
	// grant fires at most once per subscription.
	ProcessBillingEvent(ctx context.Context, event *subscription.BillingEvent) (*dto.ProcessBillingEventResponse, error)

	// GetSubscription retrieves a subscription by ID
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)

	// ListSubscriptions retrieves subscriptions matching the filter
	ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) ([]*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

// NewSubscriptionService creates a new instance of SubscriptionService
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) ProcessBillingEvent(ctx context.Context, event *subscription.BillingEvent) (*dto.ProcessBillingEventResponse, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	status, err := types.SubscriptionStatusFromExternal(event.Status)
	if err != nil {
		return nil, err
	}

	// Plan resolution is loud on purpose: an unknown plan reference means
	// billing metadata and local configuration have drifted, and silently
	// skipping the event would strand the account without credits.
	var p *plan.Plan
	if event.PlanRef != "" {
		p, err = s.PlanRepo.GetByName(ctx, event.PlanRef)
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil, ierr.WithError(err).
					WithHint("Billing event references a plan that is not configured").
					WithReportableDetails(map[string]interface{}{
						"plan_ref":                  event.PlanRef,
						"external_subscription_ref": event.ExternalSubscriptionRef,
					}).
					Mark(ierr.ErrNotFound)
			}
			return nil, err
		}
	}

	sub, err := s.SubRepo.GetByExternalRef(ctx, event.ExternalSubscriptionRef)
	created := false
	duplicate := false
	planChanged := false
	var previousStatus types.SubscriptionStatus

	switch {
	case err == nil:
		previousStatus = sub.SubscriptionStatus

		if s.isDuplicateEvent(sub, event, status, p) {
			// No state transition, but the credit side effects still run
			// below: both the trial grant and the reset are idempotent, so a
			// redelivered event re-attempts whatever the interrupted first
			// delivery failed to apply.
			s.Logger.Infow("duplicate billing event, reconciling side effects only",
				"external_subscription_ref", event.ExternalSubscriptionRef,
				"status", status,
				"period_start", event.PeriodStart,
			)
			duplicate = true
			break
		}

		if !event.PeriodStart.IsZero() && event.PeriodStart.Before(sub.CurrentPeriodStart) {
			s.Logger.Warnw("out of order billing event ignored",
				"external_subscription_ref", event.ExternalSubscriptionRef,
				"event_period_start", event.PeriodStart,
				"current_period_start", sub.CurrentPeriodStart,
			)
			return &dto.ProcessBillingEventResponse{
				Subscription:   dto.NewSubscriptionResponse(sub),
				EventDuplicate: true,
			}, nil
		}

		sub.SubscriptionStatus = status
		sub.ExternalCustomerRef = event.ExternalCustomerRef
		if p != nil {
			planChanged = sub.PlanID == nil || *sub.PlanID != p.ID
			sub.PlanID = &p.ID
		}
		if !event.PeriodStart.IsZero() {
			sub.CurrentPeriodStart = event.PeriodStart
			sub.CurrentPeriodEnd = event.PeriodEnd
		}
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return nil, err
		}

	case ierr.IsNotFound(err):
		created = true
		sub = &subscription.Subscription{
			ID:                      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
			AccountID:               event.AccountID,
			ExternalCustomerRef:     event.ExternalCustomerRef,
			ExternalSubscriptionRef: event.ExternalSubscriptionRef,
			SubscriptionStatus:      status,
			CurrentPeriodStart:      event.PeriodStart,
			CurrentPeriodEnd:        event.PeriodEnd,
			BaseModel:               types.GetDefaultBaseModel(ctx),
		}
		if p != nil {
			sub.PlanID = &p.ID
		}
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return nil, err
		}
		s.Logger.Infow("created subscription from billing event",
			"subscription_id", sub.ID,
			"account_id", sub.AccountID,
			"external_subscription_ref", sub.ExternalSubscriptionRef,
			"status", status,
		)

	default:
		return nil, err
	}

	resp := &dto.ProcessBillingEventResponse{EventDuplicate: duplicate}

	if status == types.SubscriptionStatusTrialing {
		granted, err := s.grantTrialCredits(ctx, sub, p)
		if err != nil {
			return nil, err
		}
		resp.TrialGranted = granted
	}

	if status == types.SubscriptionStatusActive {
		// A fresh activation, a transition into active, or a plan change
		// means the billing system has already confirmed a balance-relevant
		// change, so skip the local rollover check. A plan change must
		// re-land the balance on the new allotment immediately; waiting for
		// the period rollover would leave a downgraded account running on
		// the old plan's surplus. For an already-active subscription with
		// the same plan (redeliveries included) the primitive's own check
		// decides whether the period warrants a reset.
		skipPeriodCheck := created || planChanged ||
			previousStatus != types.SubscriptionStatusActive

		resetService := NewCreditResetService(s.ServiceParams)
		reset, err := resetService.ResetSubscriptionCredits(ctx, sub, skipPeriodCheck)
		if err != nil {
			return nil, err
		}
		resp.CreditsReset = reset
	}

	resp.Subscription = dto.NewSubscriptionResponse(sub)
	return resp, nil
}

// isDuplicateEvent reports whether the event carries no new information
// relative to stored state
func (s *subscriptionService) isDuplicateEvent(sub *subscription.Subscription, event *subscription.BillingEvent, status types.SubscriptionStatus, p *plan.Plan) bool {
	if sub.SubscriptionStatus != status {
		return false
	}
	if !event.PeriodStart.IsZero() && !event.PeriodStart.Equal(sub.CurrentPeriodStart) {
		return false
	}
	if p != nil && (sub.PlanID == nil || *sub.PlanID != p.ID) {
		return false
	}
	return true
}

// grantTrialCredits grants the plan's trial credits exactly once per
// subscription. The guard is the ledger itself: a trial start transaction
// referencing this subscription means the grant already happened, so
// webhook retries and status flapping cannot re-arm it.
func (s *subscriptionService) grantTrialCredits(ctx context.Context, sub *subscription.Subscription, p *plan.Plan) (bool, error) {
	if p == nil || !p.TrialCredits.IsPositive() {
		return false, nil
	}

	exists, err := s.WalletRepo.HasTransaction(ctx, sub.AccountID, types.TransactionReasonTrialStart, sub.ID)
	if err != nil {
		return false, err
	}
	if exists {
		s.Logger.Debugw("trial credits already granted, skipping",
			"subscription_id", sub.ID,
			"account_id", sub.AccountID,
		)
		return false, nil
	}

	ledger := NewLedgerService(s.ServiceParams)
	_, err = ledger.Credit(ctx, &wallet.Operation{
		AccountID:     sub.AccountID,
		Amount:        p.TrialCredits,
		Reason:        types.TransactionReasonTrialStart,
		ReferenceType: types.WalletTxReferenceTypeSubscription,
		ReferenceID:   sub.ID,
		Metadata: types.Metadata{
			"plan_id": p.ID,
		},
	})
	if err != nil {
		return false, err
	}

	s.Logger.Infow("granted trial credits",
		"subscription_id", sub.ID,
		"account_id", sub.AccountID,
		"amount", p.TrialCredits,
	)
	return true, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) ([]*dto.SubscriptionResponse, error) {
	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		items = append(items, dto.NewSubscriptionResponse(sub))
	}
	return items, nil
}
