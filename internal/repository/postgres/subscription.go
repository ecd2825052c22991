package postgres

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/postgres"
	"github.com/renderbase/renderbase/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewSubscriptionRepository creates a new instance of subscription repository
func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new subscription
func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, account_id, plan_id, external_customer_ref, external_subscription_ref,
			subscription_status, current_period_start, current_period_end, last_credit_reset,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :account_id, :plan_id, :external_customer_ref, :external_subscription_ref,
			:subscription_status, :current_period_start, :current_period_end, :last_credit_reset,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A subscription with this external reference already exists").
				WithReportableDetails(map[string]interface{}{
					"external_subscription_ref": s.ExternalSubscriptionRef,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Get retrieves a subscription by ID
func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}
	return r.queryOne(ctx, query, params, id)
}

// GetByExternalRef retrieves a subscription by the billing provider's
// subscription reference
func (r *subscriptionRepository) GetByExternalRef(ctx context.Context, ref string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE external_subscription_ref = :external_subscription_ref
		AND status = :status`

	params := map[string]interface{}{
		"external_subscription_ref": ref,
		"status":                    types.StatusPublished,
	}
	return r.queryOne(ctx, query, params, ref)
}

// List retrieves subscriptions matching the filter
func (r *subscriptionRepository) List(ctx context.Context, f *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	var clauses strings.Builder
	params := map[string]interface{}{
		"status": types.StatusPublished,
	}

	if f != nil {
		if f.AccountID != "" {
			clauses.WriteString(" AND account_id = :account_id")
			params["account_id"] = f.AccountID
		}
		if len(f.SubscriptionStatuses) > 0 {
			clauses.WriteString(" AND subscription_status = ANY(:subscription_statuses)")
			statuses := make([]string, 0, len(f.SubscriptionStatuses))
			for _, s := range f.SubscriptionStatuses {
				statuses = append(statuses, string(s))
			}
			params["subscription_statuses"] = pq.Array(statuses)
		}
	}

	query := `
		SELECT * FROM subscriptions
		WHERE status = :status` + clauses.String() + `
		ORDER BY created_at ASC`

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		if err := rows.StructScan(&s); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating subscription rows").
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

// Update persists changes to a subscription
func (r *subscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET
			plan_id = :plan_id,
			external_customer_ref = :external_customer_ref,
			subscription_status = :subscription_status,
			current_period_start = :current_period_start,
			current_period_end = :current_period_end,
			last_credit_reset = :last_credit_reset,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":                    s.ID,
		"plan_id":               s.PlanID,
		"external_customer_ref": s.ExternalCustomerRef,
		"subscription_status":   s.SubscriptionStatus,
		"current_period_start":  s.CurrentPeriodStart,
		"current_period_end":    s.CurrentPeriodEnd,
		"last_credit_reset":     s.LastCreditReset,
		"updated_by":            types.GetUserID(ctx),
		"status":                types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rowsAffected == 0 {
		return ierr.NewError("subscription not found").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) queryOne(ctx context.Context, query string, params map[string]interface{}, ref string) (*subscription.Subscription, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription not found").
			WithReportableDetails(map[string]interface{}{
				"subscription": ref,
			}).
			Mark(ierr.ErrNotFound)
	}

	var s subscription.Subscription
	if err := rows.StructScan(&s); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}
