package service

import (
	"context"

	"github.com/renderbase/renderbase/internal/api/dto"
	"github.com/renderbase/renderbase/internal/domain/provider"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// RenderJobService submits render jobs to configured providers, charging
// credits up front and refunding when the provider rejects the job.
type RenderJobService interface {
	SubmitJob(ctx context.Context, req *dto.SubmitRenderJobRequest) (*dto.SubmitRenderJobResponse, error)
}

type renderJobService struct {
	ServiceParams
}

// NewRenderJobService creates a new instance of RenderJobService
func NewRenderJobService(params ServiceParams) RenderJobService {
	return &renderJobService{
		ServiceParams: params,
	}
}

func (s *renderJobService) SubmitJob(ctx context.Context, req *dto.SubmitRenderJobRequest) (*dto.SubmitRenderJobResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	accountID := types.GetAccountID(ctx)
	if accountID == "" {
		return nil, ierr.NewError("account context missing").
			WithHint("Render jobs require an authenticated account").
			Mark(ierr.ErrPermissionDenied)
	}

	prov, err := s.ProviderRegistry.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	jobID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RENDER_JOB)
	submitReq := &provider.SubmitRequest{
		JobID:     jobID,
		AccountID: accountID,
		Prompt:    req.Prompt,
		Options:   types.Metadata(req.Options),
	}

	cost := decimal.NewFromInt(prov.Cost(submitReq))

	ledger := NewLedgerService(s.ServiceParams)

	// Charge before submitting. An insufficient balance stops the job
	// before any provider call happens.
	debitTxn, err := ledger.Debit(ctx, &wallet.Operation{
		AccountID:     accountID,
		Amount:        cost,
		Reason:        types.TransactionReasonRenderJob,
		ReferenceType: types.WalletTxReferenceTypeRenderJob,
		ReferenceID:   jobID,
		Metadata: types.Metadata{
			"provider": prov.Name(),
		},
	})
	if err != nil {
		return nil, err
	}

	submitResp, err := prov.Submit(ctx, submitReq)
	if err != nil {
		// The provider never accepted the job, so the charge is reversed as
		// its own compensating entry rather than deleted.
		refundTxn, refundErr := ledger.Credit(ctx, &wallet.Operation{
			AccountID:     accountID,
			Amount:        cost,
			Reason:        types.TransactionReasonRenderJobRefund,
			ReferenceType: types.WalletTxReferenceTypeRenderJob,
			ReferenceID:   jobID,
			Metadata: types.Metadata{
				"provider": prov.Name(),
			},
		})
		if refundErr != nil {
			s.Logger.Errorw("failed to refund rejected render job",
				"job_id", jobID,
				"account_id", accountID,
				"amount", cost,
				"error", refundErr,
			)
			return nil, refundErr
		}

		s.Logger.Warnw("render job rejected by provider, credits refunded",
			"job_id", jobID,
			"provider", prov.Name(),
			"balance", refundTxn.BalanceAfter,
			"error", err,
		)

		return nil, ierr.WithError(err).
			WithHint("The render provider rejected the job; credits were refunded").
			WithReportableDetails(map[string]interface{}{
				"job_id":   jobID,
				"provider": prov.Name(),
			}).
			Mark(ierr.ErrHTTPClient)
	}

	s.Logger.Infow("submitted render job",
		"job_id", jobID,
		"provider", prov.Name(),
		"provider_job_ref", submitResp.ProviderJobRef,
		"credits_charged", cost,
	)

	return &dto.SubmitRenderJobResponse{
		JobID:          jobID,
		Provider:       prov.Name(),
		ProviderJobRef: submitResp.ProviderJobRef,
		Status:         types.RenderJobStatusSubmitted,
		CreditsCharged: cost,
		Balance:        debitTxn.BalanceAfter,
	}, nil
}
