package service

import (
	"context"

	"github.com/renderbase/renderbase/internal/api/dto"
	"github.com/renderbase/renderbase/internal/cache"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
)

// LedgerService is the sole entry point for credit balance changes. Every
// mutation lands as exactly one immutable transaction record; balances are
// never written outside ApplyOperation.
type LedgerService interface {
	// Credit adds credits to the account's wallet
	Credit(ctx context.Context, op *wallet.Operation) (*dto.WalletTransactionResponse, error)

	// Debit removes credits from the account's wallet, failing when the
	// balance does not cover the amount
	Debit(ctx context.Context, op *wallet.Operation) (*dto.WalletTransactionResponse, error)

	// GetBalance retrieves the account's balance, creating the wallet on
	// first access
	GetBalance(ctx context.Context, accountID string) (*dto.WalletBalanceResponse, error)

	// GetTransactions retrieves the account's transaction history
	GetTransactions(ctx context.Context, filter *types.TransactionFilter) (*dto.ListWalletTransactionsResponse, error)

	// GetTransactionTotals sums the account's history by direction
	GetTransactionTotals(ctx context.Context, accountID string) (*wallet.TransactionTotals, error)
}

type ledgerService struct {
	ServiceParams
}

// NewLedgerService creates a new instance of LedgerService
func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{
		ServiceParams: params,
	}
}

func (s *ledgerService) Credit(ctx context.Context, op *wallet.Operation) (*dto.WalletTransactionResponse, error) {
	op.Type = types.TransactionTypeCredit
	return s.apply(ctx, op)
}

func (s *ledgerService) Debit(ctx context.Context, op *wallet.Operation) (*dto.WalletTransactionResponse, error) {
	op.Type = types.TransactionTypeDebit
	return s.apply(ctx, op)
}

func (s *ledgerService) apply(ctx context.Context, op *wallet.Operation) (*dto.WalletTransactionResponse, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	updated, txn, err := s.WalletRepo.ApplyOperation(ctx, op)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("wallet operation applied",
		"account_id", op.AccountID,
		"transaction_id", txn.ID,
		"type", txn.Type,
		"amount", txn.Amount,
		"reason", txn.Reason,
		"balance", updated.Balance,
	)

	// Cached views are stale the moment the balance moves. Invalidation is
	// best effort: a cache failure must never undo a committed ledger write.
	s.invalidateBalanceViews(ctx, op.AccountID)

	return dto.NewWalletTransactionResponse(txn), nil
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (*dto.WalletBalanceResponse, error) {
	if accountID == "" {
		return nil, ierr.NewError("account_id is required").
			WithHint("Account ID is required to fetch a balance").
			Mark(ierr.ErrValidation)
	}

	if cached := s.getCachedBalance(ctx, accountID); cached != nil {
		return cached, nil
	}

	w, err := s.WalletRepo.GetOrCreateWallet(ctx, accountID)
	if err != nil {
		return nil, err
	}

	resp := dto.NewWalletBalanceResponse(w)
	s.setCachedBalance(ctx, accountID, resp)
	return resp, nil
}

func (s *ledgerService) GetTransactions(ctx context.Context, filter *types.TransactionFilter) (*dto.ListWalletTransactionsResponse, error) {
	if filter == nil {
		filter = &types.TransactionFilter{}
	}

	transactions, err := s.WalletRepo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.WalletRepo.CountTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.WalletTransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, dto.NewWalletTransactionResponse(t))
	}

	return &dto.ListWalletTransactionsResponse{
		Items:  items,
		Total:  total,
		Limit:  filter.GetLimit(),
		Offset: filter.GetOffset(),
	}, nil
}

func (s *ledgerService) GetTransactionTotals(ctx context.Context, accountID string) (*wallet.TransactionTotals, error) {
	return s.WalletRepo.GetTransactionTotals(ctx, accountID)
}

// invalidateBalanceViews drops the cached balance and the account profile
// views that embed it. Errors and panics from the cache layer are swallowed
// after logging; the ledger write has already committed.
func (s *ledgerService) invalidateBalanceViews(ctx context.Context, accountID string) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Warnw("cache invalidation panicked, continuing",
				"account_id", accountID,
				"panic", r,
			)
		}
	}()

	span := cache.StartCacheSpan(ctx, "wallet_balance", "invalidate", map[string]interface{}{
		"account_id": accountID,
	})
	defer cache.FinishSpan(span)

	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixWalletBalance, accountID))
	s.Cache.DeleteByPrefix(ctx, cache.PrefixAccountProfile+accountID)
}

func (s *ledgerService) getCachedBalance(ctx context.Context, accountID string) (resp *dto.WalletBalanceResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Warnw("balance cache read panicked, falling back to store",
				"account_id", accountID,
				"panic", r,
			)
			resp = nil
		}
	}()

	span := cache.StartCacheSpan(ctx, "wallet_balance", "get", map[string]interface{}{
		"account_id": accountID,
	})
	defer cache.FinishSpan(span)

	if value, found := s.Cache.Get(ctx, cache.GenerateKey(cache.PrefixWalletBalance, accountID)); found {
		if balance, ok := value.(*dto.WalletBalanceResponse); ok {
			return balance
		}
	}
	return nil
}

func (s *ledgerService) setCachedBalance(ctx context.Context, accountID string, resp *dto.WalletBalanceResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Warnw("balance cache write panicked, continuing",
				"account_id", accountID,
				"panic", r,
			)
		}
	}()

	span := cache.StartCacheSpan(ctx, "wallet_balance", "set", map[string]interface{}{
		"account_id": accountID,
	})
	defer cache.FinishSpan(span)

	s.Cache.Set(ctx, cache.GenerateKey(cache.PrefixWalletBalance, accountID), resp, cache.ExpiryDefaultInMemory)
}
