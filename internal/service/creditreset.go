package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/renderbase/renderbase/internal/api/dto"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
)

// CreditResetService owns the monthly credit reset. The reset is absolute:
// the wallet lands exactly on the plan's monthly allotment regardless of
// what was spent or left over, recorded as a single signed adjustment so
// the ledger stays append-only.
type CreditResetService interface {
	// ResetMonthlyCredits sweeps all active subscriptions and resets every
	// account whose billing period has rolled over since its last reset.
	// Only one sweep runs at a time; concurrent calls return immediately.
	ResetMonthlyCredits(ctx context.Context) (*dto.CreditResetSweepResponse, error)

	// ResetSubscriptionCredits resets a single subscription's account to its
	// plan allotment. With skipPeriodCheck the period rollover check is
	// bypassed; callers use this when the billing system has already told
	// them the period changed.
	ResetSubscriptionCredits(ctx context.Context, sub *subscription.Subscription, skipPeriodCheck bool) (bool, error)
}

type creditResetService struct {
	ServiceParams
	sweeping atomic.Bool
}

// NewCreditResetService creates a new instance of CreditResetService
func NewCreditResetService(params ServiceParams) CreditResetService {
	return &creditResetService{
		ServiceParams: params,
	}
}

func (s *creditResetService) ResetMonthlyCredits(ctx context.Context) (*dto.CreditResetSweepResponse, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.Logger.Infow("credit reset sweep already running, skipping")
		return &dto.CreditResetSweepResponse{StartedAt: time.Now().UTC()}, nil
	}
	defer s.sweeping.Store(false)

	resp := &dto.CreditResetSweepResponse{
		StartedAt: time.Now().UTC(),
	}

	subs, err := s.SubRepo.List(ctx, &types.SubscriptionFilter{
		SubscriptionStatuses: []types.SubscriptionStatus{types.SubscriptionStatusActive},
	})
	if err != nil {
		return nil, err
	}

	resp.Examined = len(subs)

	for _, sub := range subs {
		reset, err := s.ResetSubscriptionCredits(ctx, sub, false)
		if err != nil {
			// One broken subscription must not starve the rest of the sweep
			resp.Failed++
			s.Logger.Errorw("failed to reset subscription credits",
				"subscription_id", sub.ID,
				"account_id", sub.AccountID,
				"error", err,
			)
			continue
		}
		if reset {
			resp.Reset++
		} else {
			resp.Skipped++
		}
	}

	s.Logger.Infow("credit reset sweep finished",
		"examined", resp.Examined,
		"reset", resp.Reset,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
	)

	return resp, nil
}

func (s *creditResetService) ResetSubscriptionCredits(ctx context.Context, sub *subscription.Subscription, skipPeriodCheck bool) (bool, error) {
	now := time.Now().UTC()

	if !skipPeriodCheck && !sub.IsResetDue(now) {
		return false, nil
	}

	if sub.PlanID == nil {
		return false, ierr.NewError("subscription has no plan").
			WithHint("Cannot reset credits for a subscription without a resolved plan").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": sub.ID,
				"account_id":      sub.AccountID,
			}).
			Mark(ierr.ErrNotFound)
	}

	p, err := s.PlanRepo.Get(ctx, *sub.PlanID)
	if err != nil {
		return false, err
	}

	w, err := s.WalletRepo.GetOrCreateWallet(ctx, sub.AccountID)
	if err != nil {
		return false, err
	}

	ledger := NewLedgerService(s.ServiceParams)

	// The target is the plan allotment, not current balance plus allotment.
	// Unused credits do not roll over and overdrawn promo balances are
	// clawed back; one signed delta moves the wallet onto the target.
	delta := p.CreditsPerMonth.Sub(w.Balance)

	metadata := types.Metadata{
		"plan_id":      p.ID,
		"period_start": sub.CurrentPeriodStart.Format(time.RFC3339),
	}

	op := &wallet.Operation{
		AccountID:     sub.AccountID,
		Amount:        delta.Abs(),
		Reason:        types.TransactionReasonMonthlyReset,
		ReferenceType: types.WalletTxReferenceTypeSubscription,
		ReferenceID:   sub.ID,
		Metadata:      metadata,
	}

	switch {
	case delta.IsPositive():
		if _, err := ledger.Credit(ctx, op); err != nil {
			return false, err
		}
	case delta.IsNegative():
		if _, err := ledger.Debit(ctx, op); err != nil {
			return false, err
		}
	default:
		// Already sitting on the allotment; nothing to record
		s.Logger.Debugw("balance already at plan allotment, no adjustment",
			"subscription_id", sub.ID,
			"account_id", sub.AccountID,
			"balance", w.Balance,
		)
	}

	sub.LastCreditReset = &now
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return false, err
	}

	s.Logger.Infow("reset subscription credits",
		"subscription_id", sub.ID,
		"account_id", sub.AccountID,
		"previous_balance", w.Balance,
		"target_balance", p.CreditsPerMonth,
		"delta", delta,
	)

	return true, nil
}
