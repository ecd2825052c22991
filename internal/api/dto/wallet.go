package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// WalletBalanceResponse represents an account's wallet balance
type WalletBalanceResponse struct {
	WalletID      string          `json:"wallet_id"`
	AccountID     string          `json:"account_id"`
	Balance       decimal.Decimal `json:"balance"`
	LifetimeAdded decimal.Decimal `json:"lifetime_added"`
	LifetimeSpent decimal.Decimal `json:"lifetime_spent"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewWalletBalanceResponse converts a wallet to its balance view
func NewWalletBalanceResponse(w *wallet.Wallet) *WalletBalanceResponse {
	return &WalletBalanceResponse{
		WalletID:      w.ID,
		AccountID:     w.AccountID,
		Balance:       w.Balance,
		LifetimeAdded: w.LifetimeAdded,
		LifetimeSpent: w.LifetimeSpent,
		UpdatedAt:     w.UpdatedAt,
	}
}

// AdjustCreditsRequest represents a manual credit or debit against an
// account's wallet
type AdjustCreditsRequest struct {
	AccountID   string          `json:"account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Reason      string          `json:"reason,omitempty"`
	ReferenceID string          `json:"reference_id,omitempty"`
	Metadata    types.Metadata  `json:"metadata,omitempty"`
}

func (r *AdjustCreditsRequest) Validate() error {
	if err := validator.New().Struct(r); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid credit adjustment request").
			Mark(ierr.ErrValidation)
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("amount must be positive").
			WithHint("Adjustment amounts must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Reason resolves the transaction reason, defaulting to a manual adjustment
func (r *AdjustCreditsRequest) TransactionReason() types.TransactionReason {
	if r.Reason == "" {
		return types.TransactionReasonManualAdjustment
	}
	return types.TransactionReason(r.Reason)
}

// WalletTransactionResponse represents a single ledger entry
type WalletTransactionResponse struct {
	ID            string                      `json:"id"`
	AccountID     string                      `json:"account_id"`
	WalletID      string                      `json:"wallet_id"`
	Type          types.TransactionType       `json:"type"`
	Amount        decimal.Decimal             `json:"amount"`
	BalanceBefore decimal.Decimal             `json:"balance_before"`
	BalanceAfter  decimal.Decimal             `json:"balance_after"`
	Reason        types.TransactionReason     `json:"reason"`
	ReferenceType types.WalletTxReferenceType `json:"reference_type,omitempty"`
	ReferenceID   string                      `json:"reference_id,omitempty"`
	Metadata      types.Metadata              `json:"metadata,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// NewWalletTransactionResponse converts a transaction to its API view
func NewWalletTransactionResponse(t *wallet.Transaction) *WalletTransactionResponse {
	return &WalletTransactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		WalletID:      t.WalletID,
		Type:          t.Type,
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Reason:        t.Reason,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		Metadata:      t.Metadata,
		CreatedAt:     t.CreatedAt,
	}
}

// ListWalletTransactionsResponse represents a paginated transaction listing
type ListWalletTransactionsResponse struct {
	Items  []*WalletTransactionResponse `json:"items"`
	Total  int                          `json:"total"`
	Limit  int                          `json:"limit"`
	Offset int                          `json:"offset"`
}
