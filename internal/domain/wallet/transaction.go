package wallet

import (
	"github.com/renderbase/renderbase/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one balance mutation. Rows are
// append-only; they are never updated or deleted. For every account the sum
// of credit amounts minus debit amounts equals the wallet balance.
type Transaction struct {
	ID            string                      `db:"id" json:"id"`
	AccountID     string                      `db:"account_id" json:"account_id"`
	WalletID      string                      `db:"wallet_id" json:"wallet_id"`
	Type          types.TransactionType       `db:"type" json:"type"`
	Amount        decimal.Decimal             `db:"amount" json:"amount"`
	BalanceBefore decimal.Decimal             `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal             `db:"balance_after" json:"balance_after"`
	Reason        types.TransactionReason     `db:"reason" json:"reason"`
	ReferenceType types.WalletTxReferenceType `db:"reference_type" json:"reference_type"`
	ReferenceID   string                      `db:"reference_id" json:"reference_id"`
	Metadata      types.Metadata              `db:"metadata" json:"metadata"`
	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "wallet_transactions"
}

// SignedAmount is the amount with debit amounts negated
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == types.TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// TransactionTotals aggregates an account's transaction history by direction
type TransactionTotals struct {
	Credits decimal.Decimal `db:"credits"`
	Debits  decimal.Decimal `db:"debits"`
}

// Net is the balance implied by the transaction history
func (t TransactionTotals) Net() decimal.Decimal {
	return t.Credits.Sub(t.Debits)
}
