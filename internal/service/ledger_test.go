package service

import (
	"sync"
	"testing"

	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/testutil"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	ledgerService LedgerService
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.ledgerService = NewLedgerService(s.serviceParams())
}

func (s *LedgerServiceSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		WalletRepo:       s.GetStores().WalletRepo,
		PlanRepo:         s.GetStores().PlanRepo,
		SubRepo:          s.GetStores().SubRepo,
		ProviderRegistry: s.GetProviderRegistry(),
	}
}

func (s *LedgerServiceSuite) TestGetBalanceCreatesWallet() {
	resp, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.Equal("acc_1", resp.AccountID)
	s.True(resp.Balance.IsZero())
	s.NotEmpty(resp.WalletID)
}

func (s *LedgerServiceSuite) TestCreditThenDebit() {
	ctx := s.GetContext()

	creditResp, err := s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(50),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)
	s.True(creditResp.BalanceBefore.IsZero())
	s.True(creditResp.BalanceAfter.Equal(decimal.NewFromInt(50)))

	debitResp, err := s.ledgerService.Debit(ctx, &wallet.Operation{
		AccountID:     "acc_1",
		Amount:        decimal.NewFromInt(20),
		Reason:        types.TransactionReasonRenderJob,
		ReferenceType: types.WalletTxReferenceTypeRenderJob,
		ReferenceID:   "job_1",
	})
	s.NoError(err)
	s.True(debitResp.BalanceBefore.Equal(decimal.NewFromInt(50)))
	s.True(debitResp.BalanceAfter.Equal(decimal.NewFromInt(30)))

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(30)))
	s.True(balance.LifetimeAdded.Equal(decimal.NewFromInt(50)))
	s.True(balance.LifetimeSpent.Equal(decimal.NewFromInt(20)))
}

// Sum of credits minus sum of debits always equals the live balance.
func (s *LedgerServiceSuite) TestTransactionTotalsMatchBalance() {
	ctx := s.GetContext()

	amounts := []int64{100, 30, 25, 10}
	_, err := s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(amounts[0]),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)

	for _, amount := range amounts[1:] {
		_, err := s.ledgerService.Debit(ctx, &wallet.Operation{
			AccountID: "acc_1",
			Amount:    decimal.NewFromInt(amount),
			Reason:    types.TransactionReasonRenderJob,
		})
		s.NoError(err)
	}

	totals, err := s.ledgerService.GetTransactionTotals(ctx, "acc_1")
	s.NoError(err)

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(totals.Net().Equal(balance.Balance))
	s.True(balance.Balance.Equal(decimal.NewFromInt(35)))
}

func (s *LedgerServiceSuite) TestDebitInsufficientBalance() {
	ctx := s.GetContext()

	_, err := s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(10),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)

	_, err = s.ledgerService.Debit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(11),
		Reason:    types.TransactionReasonRenderJob,
	})
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))

	// The failed debit must leave no trace
	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(10)))

	debitType := types.TransactionTypeDebit
	count, err := s.GetStores().WalletRepo.CountTransactions(ctx, &types.TransactionFilter{
		AccountID: "acc_1",
		Type:      &debitType,
	})
	s.NoError(err)
	s.Equal(0, count)
}

// Two concurrent debits of 6 against a balance of 10: exactly one wins.
func (s *LedgerServiceSuite) TestConcurrentDebits() {
	ctx := s.GetContext()

	_, err := s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(10),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.ledgerService.Debit(ctx, &wallet.Operation{
				AccountID: "acc_1",
				Amount:    decimal.NewFromInt(6),
				Reason:    types.TransactionReasonRenderJob,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsInsufficientBalance(err))
		}
	}
	s.Equal(1, succeeded)

	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(4)))
}

func (s *LedgerServiceSuite) TestRejectsNonPositiveAmounts() {
	ctx := s.GetContext()

	_, err := s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.Zero,
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.ledgerService.Debit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(-5),
		Reason:    types.TransactionReasonRenderJob,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

// A dead cache slows reads down but never changes ledger outcomes.
func (s *LedgerServiceSuite) TestCacheFailuresAreSwallowed() {
	params := s.serviceParams()
	params.Cache = testutil.NewFailingCache()
	ledger := NewLedgerService(params)

	ctx := s.GetContext()

	_, err := ledger.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(25),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)

	balance, err := ledger.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(25)))
}

func (s *LedgerServiceSuite) TestBalanceCacheInvalidatedOnWrite() {
	ctx := s.GetContext()

	_, err := s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(40),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)

	// Prime the cache
	balance, err := s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(40)))

	_, err = s.ledgerService.Debit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(15),
		Reason:    types.TransactionReasonRenderJob,
	})
	s.NoError(err)

	// The write must have dropped the cached view
	balance, err = s.ledgerService.GetBalance(ctx, "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(25)))
}

func (s *LedgerServiceSuite) TestListTransactions() {
	ctx := s.GetContext()

	_, err := s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(30),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)
	_, err = s.ledgerService.Debit(ctx, &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(5),
		Reason:    types.TransactionReasonRenderJob,
	})
	s.NoError(err)
	_, err = s.ledgerService.Credit(ctx, &wallet.Operation{
		AccountID: "acc_2",
		Amount:    decimal.NewFromInt(7),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)

	resp, err := s.ledgerService.GetTransactions(ctx, &types.TransactionFilter{AccountID: "acc_1"})
	s.NoError(err)
	s.Equal(2, resp.Total)
	s.Len(resp.Items, 2)

	// Newest first
	s.Equal(types.TransactionTypeDebit, resp.Items[0].Type)
	s.Equal(types.TransactionTypeCredit, resp.Items[1].Type)

	reason := types.TransactionReasonRenderJob
	resp, err = s.ledgerService.GetTransactions(ctx, &types.TransactionFilter{
		AccountID: "acc_1",
		Reason:    &reason,
	})
	s.NoError(err)
	s.Equal(1, resp.Total)
}
