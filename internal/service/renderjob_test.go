package service

import (
	"context"
	"errors"
	"testing"

	"github.com/renderbase/renderbase/internal/api/dto"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/testutil"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RenderJobServiceSuite struct {
	testutil.BaseServiceTestSuite
	renderJobService RenderJobService
	ledgerService    LedgerService
	provider         *testutil.MockProvider
}

func TestRenderJobService(t *testing.T) {
	suite.Run(t, new(RenderJobServiceSuite))
}

func (s *RenderJobServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	s.provider = testutil.NewMockProvider("flux", 3)
	s.GetProviderRegistry().Register(s.provider)

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
	s.renderJobService = NewRenderJobService(params)
	s.ledgerService = NewLedgerService(params)
}

func (s *RenderJobServiceSuite) accountCtx() context.Context {
	return testutil.SetupContextWithAccount("acc_1")
}

func (s *RenderJobServiceSuite) credit(amount int64) {
	_, err := s.ledgerService.Credit(s.GetContext(), &wallet.Operation{
		AccountID: "acc_1",
		Amount:    decimal.NewFromInt(amount),
		Reason:    types.TransactionReasonPromotionalCredit,
	})
	s.NoError(err)
}

func (s *RenderJobServiceSuite) TestSubmitChargesCredits() {
	s.credit(10)

	resp, err := s.renderJobService.SubmitJob(s.accountCtx(), &dto.SubmitRenderJobRequest{
		Provider: "flux",
		Prompt:   "a red bicycle",
	})
	s.NoError(err)
	s.Equal("flux", resp.Provider)
	s.Equal(types.RenderJobStatusSubmitted, resp.Status)
	s.True(resp.CreditsCharged.Equal(decimal.NewFromInt(3)))
	s.True(resp.Balance.Equal(decimal.NewFromInt(7)))

	s.Len(s.provider.SubmitCalls, 1)
	s.Equal("a red bicycle", s.provider.SubmitCalls[0].Prompt)
	s.Equal(resp.JobID, s.provider.SubmitCalls[0].JobID)
}

func (s *RenderJobServiceSuite) TestSubmitInsufficientBalance() {
	s.credit(2)

	_, err := s.renderJobService.SubmitJob(s.accountCtx(), &dto.SubmitRenderJobRequest{
		Provider: "flux",
		Prompt:   "a red bicycle",
	})
	s.Error(err)
	s.True(ierr.IsInsufficientBalance(err))

	// The provider must not be called when the charge fails
	s.Empty(s.provider.SubmitCalls)

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(2)))
}

func (s *RenderJobServiceSuite) TestProviderRejectionRefundsCredits() {
	s.credit(10)
	s.provider.SubmitErr = errors.New("upstream capacity exhausted")

	_, err := s.renderJobService.SubmitJob(s.accountCtx(), &dto.SubmitRenderJobRequest{
		Provider: "flux",
		Prompt:   "a red bicycle",
	})
	s.Error(err)

	// Charge and refund both stay on the ledger; balance is restored
	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(10)))

	txns := s.GetStores().WalletRepo.(*testutil.InMemoryWalletStore).Transactions()
	s.Len(txns, 3)
	s.Equal(types.TransactionReasonRenderJob, txns[1].Reason)
	s.Equal(types.TransactionReasonRenderJobRefund, txns[2].Reason)
	s.Equal(txns[1].ReferenceID, txns[2].ReferenceID)
}

func (s *RenderJobServiceSuite) TestUnknownProvider() {
	s.credit(10)

	_, err := s.renderJobService.SubmitJob(s.accountCtx(), &dto.SubmitRenderJobRequest{
		Provider: "nonexistent",
		Prompt:   "a red bicycle",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	balance, err := s.ledgerService.GetBalance(s.GetContext(), "acc_1")
	s.NoError(err)
	s.True(balance.Balance.Equal(decimal.NewFromInt(10)))
}

func (s *RenderJobServiceSuite) TestMissingAccountContext() {
	_, err := s.renderJobService.SubmitJob(s.GetContext(), &dto.SubmitRenderJobRequest{
		Provider: "flux",
		Prompt:   "a red bicycle",
	})
	s.Error(err)
}
