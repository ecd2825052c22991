package wallet

import (
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// Operation represents the request to credit or debit a wallet
type Operation struct {
	AccountID     string                      `json:"account_id"`
	Type          types.TransactionType       `json:"type"`
	Amount        decimal.Decimal             `json:"amount"`
	Reason        types.TransactionReason     `json:"reason"`
	ReferenceType types.WalletTxReferenceType `json:"reference_type,omitempty"`
	ReferenceID   string                      `json:"reference_id,omitempty"`
	Metadata      types.Metadata              `json:"metadata,omitempty"`
}

func (o *Operation) Validate() error {
	if o.AccountID == "" {
		return ierr.NewError("account_id is required").
			WithHint("An account must be specified for wallet operations").
			Mark(ierr.ErrValidation)
	}

	if err := o.Type.Validate(); err != nil {
		return err
	}

	if o.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("amount must be greater than 0").
			WithHint("Wallet operations require a positive amount").
			WithReportableDetails(map[string]interface{}{
				"amount": o.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	if err := o.Reason.Validate(); err != nil {
		return err
	}

	return nil
}
