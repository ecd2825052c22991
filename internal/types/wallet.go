package types

import (
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/samber/lo"
)

// TransactionType is the direction of a wallet transaction
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

func (t TransactionType) Validate() error {
	allowedValues := []TransactionType{
		TransactionTypeCredit,
		TransactionTypeDebit,
	}
	if !lo.Contains(allowedValues, t) {
		return ierr.NewError("invalid transaction type").
			WithHint("Transaction type must be either credit or debit").
			WithReportableDetails(map[string]any{
				"type": t,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransactionReason categorises why a wallet balance changed
type TransactionReason string

const (
	TransactionReasonTrialStart        TransactionReason = "subscription_trial_start"
	TransactionReasonMonthlyReset      TransactionReason = "monthly_reset"
	TransactionReasonRenderJob         TransactionReason = "render_job"
	TransactionReasonRenderJobRefund   TransactionReason = "render_job_refund"
	TransactionReasonManualAdjustment  TransactionReason = "manual_adjustment"
	TransactionReasonPromotionalCredit TransactionReason = "promotional_credit"
)

func (r TransactionReason) Validate() error {
	allowedValues := []TransactionReason{
		TransactionReasonTrialStart,
		TransactionReasonMonthlyReset,
		TransactionReasonRenderJob,
		TransactionReasonRenderJobRefund,
		TransactionReasonManualAdjustment,
		TransactionReasonPromotionalCredit,
	}
	if !lo.Contains(allowedValues, r) {
		return ierr.NewError("invalid transaction reason").
			WithHint("Transaction reason is not one of the known categories").
			WithReportableDetails(map[string]any{
				"reason":  r,
				"allowed": allowedValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// WalletTxReferenceType names the entity a transaction is tied to
type WalletTxReferenceType string

const (
	WalletTxReferenceTypeSubscription WalletTxReferenceType = "subscription"
	WalletTxReferenceTypeRenderJob    WalletTxReferenceType = "render_job"
	WalletTxReferenceTypeManual       WalletTxReferenceType = "manual"
)

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	AccountID string             `json:"account_id,omitempty" form:"account_id"`
	Type      *TransactionType   `json:"type,omitempty" form:"type"`
	Reason    *TransactionReason `json:"reason,omitempty" form:"reason"`
	Limit     int                `json:"limit,omitempty" form:"limit"`
	Offset    int                `json:"offset,omitempty" form:"offset"`
}

func (f *TransactionFilter) GetLimit() int {
	if f == nil || f.Limit <= 0 {
		return 50
	}
	return f.Limit
}

func (f *TransactionFilter) GetOffset() int {
	if f == nil || f.Offset < 0 {
		return 0
	}
	return f.Offset
}
