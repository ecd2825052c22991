package wallet

import (
	"context"

	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// Wallet represents the credit balance for an account. Every account owns
// exactly one wallet, created lazily on first access with a zero balance.
type Wallet struct {
	ID            string          `db:"id" json:"id"`
	AccountID     string          `db:"account_id" json:"account_id"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	LifetimeAdded decimal.Decimal `db:"lifetime_added" json:"lifetime_added"`
	LifetimeSpent decimal.Decimal `db:"lifetime_spent" json:"lifetime_spent"`
	Metadata      types.Metadata  `db:"metadata" json:"metadata"`
	types.BaseModel
}

func (w *Wallet) TableName() string {
	return "wallets"
}

// NewWallet returns a zero-balance wallet for the account
func NewWallet(ctx context.Context, accountID string) *Wallet {
	return &Wallet{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET),
		AccountID:     accountID,
		Balance:       decimal.Zero,
		LifetimeAdded: decimal.Zero,
		LifetimeSpent: decimal.Zero,
		Metadata:      types.Metadata{},
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

func (w *Wallet) Validate() error {
	if w.Balance.IsNegative() {
		return ierr.NewError("wallet balance cannot be negative").
			WithHint("Wallet balance must be zero or positive").
			WithReportableDetails(map[string]interface{}{
				"account_id": w.AccountID,
				"balance":    w.Balance,
			}).
			Mark(ierr.ErrValidation)
	}

	if w.LifetimeAdded.IsNegative() || w.LifetimeSpent.IsNegative() {
		return ierr.NewError("lifetime counters cannot be negative").
			WithHint("Lifetime counters only ever grow").
			WithReportableDetails(map[string]interface{}{
				"account_id":     w.AccountID,
				"lifetime_added": w.LifetimeAdded,
				"lifetime_spent": w.LifetimeSpent,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}
