package plan

import "context"

// Repository defines the interface for plan persistence operations
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	GetByName(ctx context.Context, name string) (*Plan, error)
	List(ctx context.Context, onlyActive bool) ([]*Plan, error)
	Update(ctx context.Context, p *Plan) error
}
