package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/renderbase/renderbase/internal/domain/plan"
	ierr "github.com/renderbase/renderbase/internal/errors"
)

// InMemoryPlanStore implements plan.Repository for tests
type InMemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans: make(map[string]*plan.Plan),
	}
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.plans {
		if existing.Name == p.Name {
			return ierr.NewError("plan name already exists").
				WithHint("A plan with this name already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}
	s.plans[p.ID] = p
	return nil
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, ierr.NewError("plan not found").
			WithReportableDetails(map[string]interface{}{
				"plan": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryPlanStore) GetByName(ctx context.Context, name string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plans {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, ierr.NewError("plan not found").
		WithReportableDetails(map[string]interface{}{
			"plan": name,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPlanStore) List(ctx context.Context, onlyActive bool) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*plan.Plan
	for _, p := range s.plans {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AmountCents < out[j].AmountCents
	})
	return out, nil
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[p.ID]; !ok {
		return ierr.NewError("plan not found").
			Mark(ierr.ErrNotFound)
	}
	s.plans[p.ID] = p
	return nil
}

func (s *InMemoryPlanStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[string]*plan.Plan)
}
