package testutil

import (
	"context"
	"sync"

	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
)

// InMemoryWalletStore implements wallet.Repository for tests. ApplyOperation
// holds the store mutex across the read-modify-write, matching the row lock
// semantics of the real store, so concurrent operations serialize correctly.
type InMemoryWalletStore struct {
	mu           sync.Mutex
	wallets      map[string]*wallet.Wallet // keyed by account ID
	transactions []*wallet.Transaction
}

func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets: make(map[string]*wallet.Wallet),
	}
}

func (s *InMemoryWalletStore) GetOrCreateWallet(ctx context.Context, accountID string) (*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(ctx, accountID), nil
}

func (s *InMemoryWalletStore) getOrCreateLocked(ctx context.Context, accountID string) *wallet.Wallet {
	if w, ok := s.wallets[accountID]; ok {
		return w
	}
	w := wallet.NewWallet(ctx, accountID)
	s.wallets[accountID] = w
	return w
}

func (s *InMemoryWalletStore) GetWalletByAccountID(ctx context.Context, accountID string) (*wallet.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[accountID]
	if !ok {
		return nil, ierr.NewError("wallet not found").
			WithReportableDetails(map[string]interface{}{
				"account_id": accountID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return w, nil
}

func (s *InMemoryWalletStore) ApplyOperation(ctx context.Context, op *wallet.Operation) (*wallet.Wallet, *wallet.Transaction, error) {
	if err := op.Validate(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.getOrCreateLocked(ctx, op.AccountID)

	balanceBefore := w.Balance
	balanceAfter := balanceBefore

	switch op.Type {
	case types.TransactionTypeCredit:
		balanceAfter = balanceBefore.Add(op.Amount)
		w.LifetimeAdded = w.LifetimeAdded.Add(op.Amount)
	case types.TransactionTypeDebit:
		balanceAfter = balanceBefore.Sub(op.Amount)
		if balanceAfter.IsNegative() {
			return nil, nil, ierr.NewError("debit exceeds wallet balance").
				WithHint("Not enough credits for this operation").
				WithReportableDetails(map[string]interface{}{
					"account_id": op.AccountID,
					"balance":    balanceBefore,
					"amount":     op.Amount,
				}).
				Mark(ierr.ErrInsufficientBalance)
		}
		w.LifetimeSpent = w.LifetimeSpent.Add(op.Amount)
	}
	w.Balance = balanceAfter

	txn := &wallet.Transaction{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION),
		AccountID:     op.AccountID,
		WalletID:      w.ID,
		Type:          op.Type,
		Amount:        op.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Reason:        op.Reason,
		ReferenceType: op.ReferenceType,
		ReferenceID:   op.ReferenceID,
		Metadata:      op.Metadata,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	s.transactions = append(s.transactions, txn)

	return w, txn, nil
}

func (s *InMemoryWalletStore) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, txn := range s.transactions {
		if txn.ID == id {
			return txn, nil
		}
	}
	return nil, ierr.NewError("transaction not found").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryWalletStore) ListTransactions(ctx context.Context, f *types.TransactionFilter) ([]*wallet.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.filterLocked(f)

	// Newest first, matching the real store's ordering
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	offset := f.GetOffset()
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]

	if limit := f.GetLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *InMemoryWalletStore) CountTransactions(ctx context.Context, f *types.TransactionFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.filterLocked(f)), nil
}

func (s *InMemoryWalletStore) filterLocked(f *types.TransactionFilter) []*wallet.Transaction {
	var matched []*wallet.Transaction
	for _, txn := range s.transactions {
		if f.AccountID != "" && txn.AccountID != f.AccountID {
			continue
		}
		if f.Type != nil && txn.Type != *f.Type {
			continue
		}
		if f.Reason != nil && txn.Reason != *f.Reason {
			continue
		}
		matched = append(matched, txn)
	}
	return matched
}

func (s *InMemoryWalletStore) HasTransaction(ctx context.Context, accountID string, reason types.TransactionReason, referenceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, txn := range s.transactions {
		if txn.AccountID == accountID && txn.Reason == reason && txn.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryWalletStore) GetTransactionTotals(ctx context.Context, accountID string) (*wallet.TransactionTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := &wallet.TransactionTotals{}
	for _, txn := range s.transactions {
		if txn.AccountID != accountID {
			continue
		}
		switch txn.Type {
		case types.TransactionTypeCredit:
			totals.Credits = totals.Credits.Add(txn.Amount)
		case types.TransactionTypeDebit:
			totals.Debits = totals.Debits.Add(txn.Amount)
		}
	}
	return totals, nil
}

// Transactions returns a snapshot of all recorded transactions
func (s *InMemoryWalletStore) Transactions() []*wallet.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*wallet.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

func (s *InMemoryWalletStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets = make(map[string]*wallet.Wallet)
	s.transactions = nil
}
