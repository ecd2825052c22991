package subscription

import (
	"context"

	"github.com/renderbase/renderbase/internal/types"
)

// Repository defines the interface for subscription persistence operations
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	GetByExternalRef(ctx context.Context, externalRef string) (*Subscription, error)
	List(ctx context.Context, f *types.SubscriptionFilter) ([]*Subscription, error)
	Update(ctx context.Context, s *Subscription) error
}
