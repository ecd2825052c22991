package wallet

import (
	"context"

	"github.com/renderbase/renderbase/internal/types"
)

// Repository defines the interface for wallet persistence operations.
// ApplyOperation is the only path that mutates a wallet balance: the balance
// update and the transaction record commit in one atomic unit of work.
type Repository interface {
	// Wallet operations
	GetOrCreateWallet(ctx context.Context, accountID string) (*Wallet, error)
	GetWalletByAccountID(ctx context.Context, accountID string) (*Wallet, error)
	ApplyOperation(ctx context.Context, op *Operation) (*Wallet, *Transaction, error)

	// Transaction operations
	GetTransactionByID(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, f *types.TransactionFilter) ([]*Transaction, error)
	CountTransactions(ctx context.Context, f *types.TransactionFilter) (int, error)
	HasTransaction(ctx context.Context, accountID string, reason types.TransactionReason, referenceID string) (bool, error)
	GetTransactionTotals(ctx context.Context, accountID string) (*TransactionTotals, error)
}
