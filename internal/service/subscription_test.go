package service

import (
	"testing"
	"time"

	"github.com/renderbase/renderbase/internal/domain/plan"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/testutil"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	subscriptionService SubscriptionService
	ledgerService       LedgerService
	testPlan            *plan.Plan
	periodStart         time.Time
	periodEnd           time.Time
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		WalletRepo:       s.GetStores().WalletRepo,
		PlanRepo:         s.GetStores().PlanRepo,
		SubRepo:          s.GetStores().SubRepo,
		ProviderRegistry: s.GetProviderRegistry(),
	}
	s.subscriptionService = NewSubscriptionService(params)
	s.ledgerService = NewLedgerService(params)

	s.testPlan = &plan.Plan{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:            "starter",
		DisplayName:     "Starter",
		AmountCents:     900,
		Currency:        "usd",
		Interval:        types.PlanIntervalMonth,
		CreditsPerMonth: decimal.NewFromInt(50),
		TrialDays:       7,
		TrialCredits:    decimal.NewFromInt(15),
		IsActive:        true,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), s.testPlan))

	s.periodStart = time.Now().UTC().Truncate(time.Second)
	s.periodEnd = s.periodStart.AddDate(0, 1, 0)
}

func (s *SubscriptionServiceSuite) trialEvent() *subscription.BillingEvent {
	return &subscription.BillingEvent{
		AccountID:               "acc_1",
		ExternalSubscriptionRef: "sub_ext_1",
		ExternalCustomerRef:     "cus_ext_1",
		Status:                  "trialing",
		PlanRef:                 "starter",
		PeriodStart:             s.periodStart,
		PeriodEnd:               s.periodEnd,
	}
}

func (s *SubscriptionServiceSuite) TestTrialStartGrantsCredits() {
	resp, err := s.subscriptionService.ProcessBillingEvent(s.GetContext(), s.trialEvent())
	s.NoError(err)
	s.True(resp.TrialGranted)
	s.False(resp.EventDuplicate)
	s.Equal(types.SubscriptionStatusTrialing, resp.Subscription.SubscriptionStatus)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(15)))

	txns := s.GetStores().WalletRepo.(*testutil.InMemoryWalletStore).Transactions()
	s.Len(txns, 1)
	s.Equal(types.TransactionReasonTrialStart, txns[0].Reason)
	s.Equal(resp.Subscription.ID, txns[0].ReferenceID)
}

// Redelivered trial webhooks must not grant twice, even after the account
// has spent the credits.
func (s *SubscriptionServiceSuite) TestTrialGrantIsIdempotent() {
	ctx := s.GetContext()

	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, s.trialEvent())
	s.NoError(err)
	s.True(resp.TrialGranted)

	// Spend part of the grant so a re-grant would be visible
	_, err = s.ledgerService.Debit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(5),
		Reason:    types.TransactionReasonRenderJob,
	})
	s.NoError(err)

	resp, err = s.subscriptionService.ProcessBillingEvent(ctx, s.trialEvent())
	s.NoError(err)
	s.False(resp.TrialGranted)
	s.True(resp.EventDuplicate)

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(10)))
}

// A delivery can commit the subscription row and then fail on the credit
// step. The billing system's redelivery is the retry mechanism, so the
// redelivered identical event must still attempt the trial grant.
func (s *SubscriptionServiceSuite) TestRedeliveryHealsInterruptedTrialGrant() {
	ctx := s.GetContext()

	// Stored subscription matching the event exactly, but no trial
	// transaction: the state left behind by an interrupted first delivery.
	sub := &subscription.Subscription{
		ID:                      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		AccountID:               "acc_1",
		PlanID:                  &s.testPlan.ID,
		ExternalCustomerRef:     "cus_ext_1",
		ExternalSubscriptionRef: "sub_ext_1",
		SubscriptionStatus:      types.SubscriptionStatusTrialing,
		CurrentPeriodStart:      s.periodStart,
		CurrentPeriodEnd:        s.periodEnd,
		BaseModel:               types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubRepo.Create(ctx, sub))

	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, s.trialEvent())
	s.NoError(err)
	s.True(resp.EventDuplicate)
	s.True(resp.TrialGranted)

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(15)))
}

// Same interrupted-delivery shape for activation: the subscription row is
// already active but the reset never landed, and the redelivered event
// must reconcile the balance.
func (s *SubscriptionServiceSuite) TestRedeliveryHealsInterruptedReset() {
	ctx := s.GetContext()

	sub := &subscription.Subscription{
		ID:                      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		AccountID:               "acc_1",
		PlanID:                  &s.testPlan.ID,
		ExternalCustomerRef:     "cus_ext_1",
		ExternalSubscriptionRef: "sub_ext_1",
		SubscriptionStatus:      types.SubscriptionStatusActive,
		CurrentPeriodStart:      s.periodStart,
		CurrentPeriodEnd:        s.periodEnd,
		BaseModel:               types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().SubRepo.Create(ctx, sub))

	event := s.trialEvent()
	event.Status = "active"
	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, event)
	s.NoError(err)
	s.True(resp.EventDuplicate)
	s.True(resp.CreditsReset)

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))
}

func (s *SubscriptionServiceSuite) TestUnknownPlanFailsLoudly() {
	event := s.trialEvent()
	event.PlanRef = "enterprise"

	_, err := s.subscriptionService.ProcessBillingEvent(s.GetContext(), event)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	// Nothing should have been persisted
	_, err = s.GetStores().SubRepo.GetByExternalRef(s.GetContext(), event.ExternalSubscriptionRef)
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionServiceSuite) TestUnknownStatusRejected() {
	event := s.trialEvent()
	event.Status = "paused"

	_, err := s.subscriptionService.ProcessBillingEvent(s.GetContext(), event)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestActivationResetsCredits() {
	ctx := s.GetContext()

	// Trial first: 15 credits granted
	_, err := s.subscriptionService.ProcessBillingEvent(ctx, s.trialEvent())
	s.NoError(err)

	// Transition to active: balance becomes exactly the plan allotment
	event := s.trialEvent()
	event.Status = "active"
	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, event)
	s.NoError(err)
	s.True(resp.CreditsReset)
	s.False(resp.TrialGranted)

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))

	sub, err := s.GetStores().SubRepo.GetByExternalRef(ctx, event.ExternalSubscriptionRef)
	s.NoError(err)
	s.NotNil(sub.LastCreditReset)
}

// Activation must not re-arm the trial grant.
func (s *SubscriptionServiceSuite) TestTrialDoesNotReArmAfterActivation() {
	ctx := s.GetContext()

	_, err := s.subscriptionService.ProcessBillingEvent(ctx, s.trialEvent())
	s.NoError(err)

	active := s.trialEvent()
	active.Status = "active"
	_, err = s.subscriptionService.ProcessBillingEvent(ctx, active)
	s.NoError(err)

	// Billing flaps back to trialing and redelivers
	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, s.trialEvent())
	s.NoError(err)
	s.False(resp.TrialGranted)
}

func (s *SubscriptionServiceSuite) TestPastDueKeepsBalance() {
	ctx := s.GetContext()

	active := s.trialEvent()
	active.Status = "active"
	_, err := s.subscriptionService.ProcessBillingEvent(ctx, active)
	s.NoError(err)

	pastDue := s.trialEvent()
	pastDue.Status = "past_due"
	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, pastDue)
	s.NoError(err)
	s.False(resp.CreditsReset)
	s.Equal(types.SubscriptionStatusPastDue, resp.Subscription.SubscriptionStatus)

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))
}

func (s *SubscriptionServiceSuite) TestOutOfOrderEventIgnored() {
	ctx := s.GetContext()

	current := s.trialEvent()
	current.Status = "active"
	_, err := s.subscriptionService.ProcessBillingEvent(ctx, current)
	s.NoError(err)

	stale := s.trialEvent()
	stale.Status = "canceled"
	stale.PeriodStart = current.PeriodStart.AddDate(0, -1, 0)
	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, stale)
	s.NoError(err)
	s.True(resp.EventDuplicate)
	s.Equal(types.SubscriptionStatusActive, resp.Subscription.SubscriptionStatus)
}

func (s *SubscriptionServiceSuite) TestPlanChangeUpdatesSubscription() {
	ctx := s.GetContext()

	proPlan := &plan.Plan{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:            "pro",
		DisplayName:     "Pro",
		AmountCents:     2900,
		Currency:        "usd",
		Interval:        types.PlanIntervalMonth,
		CreditsPerMonth: decimal.NewFromInt(200),
		IsActive:        true,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().PlanRepo.Create(ctx, proPlan))

	active := s.trialEvent()
	active.Status = "active"
	_, err := s.subscriptionService.ProcessBillingEvent(ctx, active)
	s.NoError(err)

	upgrade := s.trialEvent()
	upgrade.Status = "active"
	upgrade.PlanRef = "pro"
	resp, err := s.subscriptionService.ProcessBillingEvent(ctx, upgrade)
	s.NoError(err)
	s.Equal(&proPlan.ID, resp.Subscription.PlanID)

	// A mid-period plan change re-lands the balance on the new allotment
	// immediately instead of waiting for the next rollover
	s.True(resp.CreditsReset)
	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(200)))
}
