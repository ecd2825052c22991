package postgres

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/postgres"
	"github.com/renderbase/renderbase/internal/types"
)

type walletRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewWalletRepository creates a new instance of wallet repository
func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return &walletRepository{
		db:     db,
		logger: logger,
	}
}

// GetWalletByAccountID retrieves a wallet by its owning account
func (r *walletRepository) GetWalletByAccountID(ctx context.Context, accountID string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE account_id = :account_id
		AND status = :status`

	params := map[string]interface{}{
		"account_id": accountID,
		"status":     types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet not found").
			WithReportableDetails(map[string]interface{}{
				"account_id": accountID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var w wallet.Wallet
	if err := rows.StructScan(&w); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet").
			Mark(ierr.ErrDatabase)
	}
	return &w, nil
}

// GetOrCreateWallet returns the account's wallet, creating a zero-balance
// wallet on first access. The unique constraint on account_id resolves
// concurrent first-access races: the loser reloads the winner's row.
func (r *walletRepository) GetOrCreateWallet(ctx context.Context, accountID string) (*wallet.Wallet, error) {
	w, err := r.GetWalletByAccountID(ctx, accountID)
	if err == nil {
		return w, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	created := wallet.NewWallet(ctx, accountID)
	if err := r.createWallet(ctx, created); err != nil {
		if isUniqueViolation(err) {
			// Someone else created it between our read and write; reload
			r.logger.Debugw("wallet create race lost, reloading",
				"account_id", accountID,
			)
			return r.GetWalletByAccountID(ctx, accountID)
		}
		return nil, err
	}

	r.logger.Infow("created wallet",
		"wallet_id", created.ID,
		"account_id", accountID,
	)
	return created, nil
}

func (r *walletRepository) createWallet(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (
			id, account_id, balance, lifetime_added, lifetime_spent, metadata,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :account_id, :balance, :lifetime_added, :lifetime_spent, :metadata,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, w); err != nil {
		if isUniqueViolation(err) {
			return err
		}
		return ierr.WithError(err).
			WithHint("Failed to create wallet").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// ApplyOperation mutates the wallet balance and appends the transaction
// record within a single database transaction. The wallet row is locked
// for the duration, so concurrent operations on one account serialize in
// transaction order while other accounts proceed in parallel. The balance
// check for debits happens under the same lock; there is no check-then-act
// window.
func (r *walletRepository) ApplyOperation(ctx context.Context, op *wallet.Operation) (*wallet.Wallet, *wallet.Transaction, error) {
	var (
		updated *wallet.Wallet
		txn     *wallet.Transaction
	)

	err := r.db.WithTx(ctx, func(ctx context.Context) error {
		w, err := r.lockWallet(ctx, op.AccountID)
		if err != nil {
			return err
		}

		balanceBefore := w.Balance
		var balanceAfter = balanceBefore

		switch op.Type {
		case types.TransactionTypeCredit:
			balanceAfter = balanceBefore.Add(op.Amount)
			w.LifetimeAdded = w.LifetimeAdded.Add(op.Amount)
		case types.TransactionTypeDebit:
			balanceAfter = balanceBefore.Sub(op.Amount)
			if balanceAfter.IsNegative() {
				return ierr.NewError("debit exceeds wallet balance").
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

		updateQuery := `
			UPDATE wallets
			SET
				balance = :balance,
				lifetime_added = :lifetime_added,
				lifetime_spent = :lifetime_spent,
				updated_at = NOW(),
				updated_by = :updated_by
			WHERE id = :id
			AND status = :status`

		updateParams := map[string]interface{}{
			"id":             w.ID,
			"balance":        w.Balance,
			"lifetime_added": w.LifetimeAdded,
			"lifetime_spent": w.LifetimeSpent,
			"updated_by":     types.GetUserID(ctx),
			"status":         types.StatusPublished,
		}

		result, err := r.db.NamedExecContext(ctx, updateQuery, updateParams)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to update wallet balance").
				Mark(ierr.ErrDatabase)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to get rows affected").
				Mark(ierr.ErrDatabase)
		}
		if rowsAffected == 0 {
			return ierr.NewError("wallet not found or already updated").
				Mark(ierr.ErrDatabase)
		}

		txn = &wallet.Transaction{
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

		txQuery := `
			INSERT INTO wallet_transactions (
				id, account_id, wallet_id, type, amount, balance_before, balance_after,
				reason, reference_type, reference_id, metadata,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :account_id, :wallet_id, :type, :amount, :balance_before, :balance_after,
				:reason, :reference_type, :reference_id, :metadata,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`

		if _, err := r.db.NamedExecContext(ctx, txQuery, txn); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create transaction record").
				Mark(ierr.ErrDatabase)
		}

		updated = w

		r.logger.Debugw("applied wallet operation",
			"account_id", op.AccountID,
			"type", op.Type,
			"amount", op.Amount,
			"balance_before", balanceBefore,
			"balance_after", balanceAfter,
			"reason", op.Reason,
		)

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return updated, txn, nil
}

// lockWallet loads the wallet row FOR UPDATE, creating it first when the
// account has no wallet yet (lazy creation inside the same transaction).
func (r *walletRepository) lockWallet(ctx context.Context, accountID string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE account_id = :account_id
		AND status = :status
		FOR UPDATE`

	params := map[string]interface{}{
		"account_id": accountID,
		"status":     types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to lock wallet row").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if rows.Next() {
		var w wallet.Wallet
		if err := rows.StructScan(&w); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan wallet").
				Mark(ierr.ErrDatabase)
		}
		return &w, nil
	}
	rows.Close()

	created := wallet.NewWallet(ctx, accountID)
	if err := r.createWallet(ctx, created); err != nil {
		if !isUniqueViolation(err) {
			return nil, err
		}
		// Lost the create race inside the transaction; lock the winner's row
		return r.lockWallet(ctx, accountID)
	}
	return created, nil
}

// GetTransactionByID retrieves a transaction by its ID
func (r *walletRepository) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query transaction").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("transaction not found").
			WithReportableDetails(map[string]interface{}{
				"transaction_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var tx wallet.Transaction
	if err := rows.StructScan(&tx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan transaction").
			Mark(ierr.ErrDatabase)
	}
	return &tx, nil
}

// ListTransactions retrieves transactions matching the filter, newest first
func (r *walletRepository) ListTransactions(ctx context.Context, f *types.TransactionFilter) ([]*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE status = :status` + transactionFilterClauses(f) + `
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset`

	params := transactionFilterParams(f)
	params["limit"] = f.GetLimit()
	params["offset"] = f.GetOffset()

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var transactions []*wallet.Transaction
	for rows.Next() {
		var tx wallet.Transaction
		if err := rows.StructScan(&tx); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan transaction").
				Mark(ierr.ErrDatabase)
		}
		transactions = append(transactions, &tx)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating transaction rows").
			Mark(ierr.ErrDatabase)
	}

	return transactions, nil
}

// CountTransactions counts transactions matching the filter
func (r *walletRepository) CountTransactions(ctx context.Context, f *types.TransactionFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM wallet_transactions
		WHERE status = :status` + transactionFilterClauses(f)

	rows, err := r.db.NamedQueryContext(ctx, query, transactionFilterParams(f))
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan transaction count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count, nil
}

// HasTransaction reports whether the account already has a transaction for
// the given reason and reference. Idempotency guards key on this.
func (r *walletRepository) HasTransaction(ctx context.Context, accountID string, reason types.TransactionReason, referenceID string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM wallet_transactions
		WHERE account_id = :account_id
		AND reason = :reason
		AND reference_id = :reference_id
		AND status = :status`

	params := map[string]interface{}{
		"account_id":   accountID,
		"reason":       reason,
		"reference_id": referenceID,
		"status":       types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check for existing transaction").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var count int
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return false, ierr.WithError(err).
				WithHint("Failed to scan transaction count").
				Mark(ierr.ErrDatabase)
		}
	}
	return count > 0, nil
}

// GetTransactionTotals sums the account's transaction history by direction
func (r *walletRepository) GetTransactionTotals(ctx context.Context, accountID string) (*wallet.TransactionTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0) AS credits,
			COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0) AS debits
		FROM wallet_transactions
		WHERE account_id = :account_id
		AND status = :status`

	params := map[string]interface{}{
		"account_id": accountID,
		"status":     types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query transaction totals").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var totals wallet.TransactionTotals
	if rows.Next() {
		if err := rows.StructScan(&totals); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan transaction totals").
				Mark(ierr.ErrDatabase)
		}
	}
	return &totals, nil
}

func transactionFilterClauses(f *types.TransactionFilter) string {
	var clauses strings.Builder
	if f.AccountID != "" {
		clauses.WriteString(" AND account_id = :account_id")
	}
	if f.Type != nil {
		clauses.WriteString(" AND type = :type")
	}
	if f.Reason != nil {
		clauses.WriteString(" AND reason = :reason")
	}
	return clauses.String()
}

func transactionFilterParams(f *types.TransactionFilter) map[string]interface{} {
	params := map[string]interface{}{
		"status": types.StatusPublished,
	}
	if f.AccountID != "" {
		params["account_id"] = f.AccountID
	}
	if f.Type != nil {
		params["type"] = *f.Type
	}
	if f.Reason != nil {
		params["reason"] = *f.Reason
	}
	return params
}

// isUniqueViolation reports whether err is a postgres unique constraint error
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
