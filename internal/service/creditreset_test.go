package service

import (
	"testing"
	"time"

	"github.com/renderbase/renderbase/internal/domain/plan"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	"github.com/renderbase/renderbase/internal/testutil"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CreditResetServiceSuite struct {
	testutil.BaseServiceTestSuite
	resetService  CreditResetService
	ledgerService LedgerService
	testPlan      *plan.Plan
}

func TestCreditResetService(t *testing.T) {
	suite.Run(t, new(CreditResetServiceSuite))
}

func (s *CreditResetServiceSuite) SetupTest() {
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
	s.resetService = NewCreditResetService(params)
	s.ledgerService = NewLedgerService(params)

	s.testPlan = &plan.Plan{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:            "starter",
		DisplayName:     "Starter",
		AmountCents:     900,
		Currency:        "usd",
		Interval:        types.PlanIntervalMonth,
		CreditsPerMonth: decimal.NewFromInt(50),
		IsActive:        true,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), s.testPlan))
}

// newSubscription stores an active subscription whose period started in the
// past and whose last reset predates the period, i.e. a reset is due.
func (s *CreditResetServiceSuite) newSubscription(accountID, externalRef string) *subscription.Subscription {
	periodStart := time.Now().UTC().Add(-time.Hour)
	lastReset := periodStart.Add(-30 * 24 * time.Hour)

	sub := &subscription.Subscription{
		ID:                      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		AccountID:               accountID,
		PlanID:                  &s.testPlan.ID,
		ExternalCustomerRef:     "cus_" + accountID,
		ExternalSubscriptionRef: externalRef,
		SubscriptionStatus:      types.SubscriptionStatusActive,
		CurrentPeriodStart:      periodStart,
		CurrentPeriodEnd:        periodStart.AddDate(0, 1, 0),
		LastCreditReset:         &lastReset,
		BaseModel:               types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *CreditResetServiceSuite) credit(accountID string, amount int64) {
	_, err := s.ledgerService.Credit(s.GetContext(), &wallet.Operation{
		AccountID: accountID,
		Amount:    decimal.NewFromInt(amount),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)
}

// Balance below the allotment: the reset credits the difference.
func (s *CreditResetServiceSuite) TestResetCreditsBalanceUpToAllotment() {
	sub := s.newSubscription("acc_1", "sub_ext_1")
	s.credit("acc_1", 15)

	reset, err := s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, false)
	s.NoError(err)
	s.True(reset)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))

	txns := s.GetStores().WalletRepo.(*testutil.InMemoryWalletStore).Transactions()
	last := txns[len(txns)-1]
	s.Equal(types.TransactionReasonMonthlyReset, last.Reason)
	s.Equal(types.TransactionTypeCredit, last.Type)
	s.True(last.Amount.Equal(decimal.NewFromInt(35)))
}

// Balance above the allotment: the reset debits the excess.
func (s *CreditResetServiceSuite) TestResetDebitsBalanceDownToAllotment() {
	sub := s.newSubscription("acc_1", "sub_ext_1")
	s.credit("acc_1", 70)

	reset, err := s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, false)
	s.NoError(err)
	s.True(reset)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))

	txns := s.GetStores().WalletRepo.(*testutil.InMemoryWalletStore).Transactions()
	last := txns[len(txns)-1]
	s.Equal(types.TransactionReasonMonthlyReset, last.Reason)
	s.Equal(types.TransactionTypeDebit, last.Type)
	s.True(last.Amount.Equal(decimal.NewFromInt(20)))
}

// Balance already on the allotment: the reset records nothing but still
// stamps the subscription.
func (s *CreditResetServiceSuite) TestResetNoOpAtAllotment() {
	sub := s.newSubscription("acc_1", "sub_ext_1")
	s.credit("acc_1", 50)

	before := len(s.GetStores().WalletRepo.(*testutil.InMemoryWalletStore).Transactions())

	reset, err := s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, false)
	s.NoError(err)
	s.True(reset)

	after := len(s.GetStores().WalletRepo.(*testutil.InMemoryWalletStore).Transactions())
	s.Equal(before, after)

	stored, err := s.GetStores().SubRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.NotNil(stored.LastCreditReset)
	s.True(stored.LastCreditReset.After(sub.CurrentPeriodStart))
}

// A second reset within the same period must be a no-op.
func (s *CreditResetServiceSuite) TestResetDoesNotRepeatWithinPeriod() {
	sub := s.newSubscription("acc_1", "sub_ext_1")
	s.credit("acc_1", 15)

	reset, err := s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, false)
	s.NoError(err)
	s.True(reset)

	// Spend some of the fresh allotment, then try again
	_, err = s.ledgerService.Debit(s.GetContext(), &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(10),
		Reason:    types.TransactionReasonRenderJob,
	})
	s.NoError(err)

	reset, err = s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, false)
	s.NoError(err)
	s.False(reset)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(40)))
}

// skipPeriodCheck forces the reset even when the period says otherwise.
func (s *CreditResetServiceSuite) TestSkipPeriodCheckForcesReset() {
	sub := s.newSubscription("acc_1", "sub_ext_1")
	s.credit("acc_1", 15)

	reset, err := s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, false)
	s.NoError(err)
	s.True(reset)

	reset, err = s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, true)
	s.NoError(err)
	s.True(reset)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))
}

func (s *CreditResetServiceSuite) TestResetFailsWithoutPlan() {
	sub := s.newSubscription("acc_1", "sub_ext_1")
	sub.PlanID = nil

	_, err := s.resetService.ResetSubscriptionCredits(s.GetContext(), sub, true)
	s.Error(err)
}

// A subscription whose renewal webhook was missed entirely still describes
// an expired period. The sweep must treat it as due once the period has
// ended, even though the stored period fields never advanced.
func (s *CreditResetServiceSuite) TestSweepResetsMissedRenewal() {
	sub := s.newSubscription("acc_1", "sub_ext_1")
	now := time.Now().UTC()
	sub.CurrentPeriodStart = now.AddDate(0, -1, -10)
	sub.CurrentPeriodEnd = now.AddDate(0, 0, -10)
	lastReset := now.AddDate(0, 0, -35)
	sub.LastCreditReset = &lastReset
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), sub))
	s.credit("acc_1", 12)

	resp, err := s.resetService.ResetMonthlyCredits(s.GetContext())
	s.NoError(err)
	s.Equal(1, resp.Examined)
	s.Equal(1, resp.Reset)
	s.Equal(0, resp.Skipped)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))

	// The reset stamp now covers the expired period, so a second sweep
	// leaves the subscription alone
	resp, err = s.resetService.ResetMonthlyCredits(s.GetContext())
	s.NoError(err)
	s.Equal(0, resp.Reset)
	s.Equal(1, resp.Skipped)
}

func (s *CreditResetServiceSuite) TestSweepResetsDueSubscriptionsOnly() {
	s.newSubscription("acc_1", "sub_ext_1")
	s.credit("acc_1", 10)

	// Already reset for the current period
	fresh := s.newSubscription("acc_2", "sub_ext_2")
	now := time.Now().UTC()
	fresh.LastCreditReset = &now
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), fresh))
	s.credit("acc_2", 10)

	// Canceled subscriptions are out of scope for the sweep
	canceled := s.newSubscription("acc_3", "sub_ext_3")
	canceled.SubscriptionStatus = types.SubscriptionStatusCanceled
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), canceled))
	s.credit("acc_3", 10)

	resp, err := s.resetService.ResetMonthlyCredits(s.GetContext())
	s.NoError(err)
	s.Equal(2, resp.Examined)
	s.Equal(1, resp.Reset)
	s.Equal(1, resp.Skipped)
	s.Equal(0, resp.Failed)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))

	balance, err = s.ledgerService.GetBalance(s.GetContext(), "acc_2")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(10)))

	balance, err = s.ledgerService.GetBalance(s.GetContext(), "acc_3")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(10)))
}

// One broken subscription must not stop the sweep.
func (s *CreditResetServiceSuite) TestSweepContinuesPastFailures() {
	broken := s.newSubscription("acc_1", "sub_ext_1")
	broken.PlanID = nil
	s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), broken))

	s.newSubscription("acc_2", "sub_ext_2")

	resp, err := s.resetService.ResetMonthlyCredits(s.GetContext())
	s.NoError(err)
	s.Equal(2, resp.Examined)
	s.Equal(1, resp.Reset)
	s.Equal(1, resp.Failed)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_2")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(50)))
}
