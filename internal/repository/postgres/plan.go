package postgres

import (
	"context"

	"github.com/renderbase/renderbase/internal/cache"
	"github.com/renderbase/renderbase/internal/domain/plan"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/postgres"
	"github.com/renderbase/renderbase/internal/types"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

// NewPlanRepository creates a new instance of plan repository
func NewPlanRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return &planRepository{
		db:     db,
		logger: logger,
		cache:  cache,
	}
}

// Create inserts a new plan
func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO plans (
			id, name, display_name, amount_cents, currency, interval,
			credits_per_month, trial_days, trial_amount_cents, trial_credits, is_active,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :display_name, :amount_cents, :currency, :interval,
			:credits_per_month, :trial_days, :trial_amount_cents, :trial_credits, :is_active,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A plan with this name already exists").
				WithReportableDetails(map[string]interface{}{
					"name": p.Name,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// Get retrieves a plan by ID
func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	if cached := r.getCache(ctx, id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM plans
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	p, err := r.queryOne(ctx, query, params, id)
	if err != nil {
		return nil, err
	}
	r.setCache(ctx, id, p)
	return p, nil
}

// GetByName retrieves a plan by its unique name. Plan names are the join
// key between billing provider price metadata and local plans; a missing
// plan here is a configuration error, not a soft miss.
func (r *planRepository) GetByName(ctx context.Context, name string) (*plan.Plan, error) {
	query := `
		SELECT * FROM plans
		WHERE name = :name
		AND status = :status`

	params := map[string]interface{}{
		"name":   name,
		"status": types.StatusPublished,
	}

	return r.queryOne(ctx, query, params, name)
}

// List retrieves plans, optionally restricted to active ones
func (r *planRepository) List(ctx context.Context, onlyActive bool) ([]*plan.Plan, error) {
	query := `
		SELECT * FROM plans
		WHERE status = :status`
	if onlyActive {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY amount_cents ASC`

	params := map[string]interface{}{
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query plans").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		var p plan.Plan
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan plan").
				Mark(ierr.ErrDatabase)
		}
		plans = append(plans, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating plan rows").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

// Update persists changes to a plan
func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE plans
		SET
			display_name = :display_name,
			amount_cents = :amount_cents,
			currency = :currency,
			interval = :interval,
			credits_per_month = :credits_per_month,
			trial_days = :trial_days,
			trial_amount_cents = :trial_amount_cents,
			trial_credits = :trial_credits,
			is_active = :is_active,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":                 p.ID,
		"display_name":       p.DisplayName,
		"amount_cents":       p.AmountCents,
		"currency":           p.Currency,
		"interval":           p.Interval,
		"credits_per_month":  p.CreditsPerMonth,
		"trial_days":         p.TrialDays,
		"trial_amount_cents": p.TrialAmountCents,
		"trial_credits":      p.TrialCredits,
		"is_active":          p.IsActive,
		"updated_by":         types.GetUserID(ctx),
		"status":             types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update plan").
			Mark(ierr.ErrDatabase)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rowsAffected == 0 {
		return ierr.NewError("plan not found").
			WithReportableDetails(map[string]interface{}{
				"plan_id": p.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	r.deleteCache(ctx, p.ID)
	return nil
}

func (r *planRepository) queryOne(ctx context.Context, query string, params map[string]interface{}, ref string) (*plan.Plan, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query plan").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("plan not found").
			WithReportableDetails(map[string]interface{}{
				"plan": ref,
			}).
			Mark(ierr.ErrNotFound)
	}

	var p plan.Plan
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan plan").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) setCache(ctx context.Context, id string, p *plan.Plan) {
	span := cache.StartCacheSpan(ctx, "plan", "set", map[string]interface{}{
		"plan_id": id,
	})
	defer cache.FinishSpan(span)

	r.cache.Set(ctx, cache.GenerateKey(cache.PrefixPlan, id), p, cache.ExpiryDefaultInMemory)
}

func (r *planRepository) getCache(ctx context.Context, id string) *plan.Plan {
	span := cache.StartCacheSpan(ctx, "plan", "get", map[string]interface{}{
		"plan_id": id,
	})
	defer cache.FinishSpan(span)

	if value, found := r.cache.Get(ctx, cache.GenerateKey(cache.PrefixPlan, id)); found {
		if p, ok := value.(*plan.Plan); ok {
			return p
		}
	}
	return nil
}

func (r *planRepository) deleteCache(ctx context.Context, id string) {
	span := cache.StartCacheSpan(ctx, "plan", "delete", map[string]interface{}{
		"plan_id": id,
	})
	defer cache.FinishSpan(span)

	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixPlan, id))
}
