package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/renderbase/renderbase/internal/domain/subscription"
	ierr "github.com/renderbase/renderbase/internal/errors"
	"github.com/renderbase/renderbase/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository for tests
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subscriptions {
		if existing.ExternalSubscriptionRef == sub.ExternalSubscriptionRef {
			return ierr.NewError("external subscription ref already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}
	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, ierr.NewError("subscription not found").
			WithReportableDetails(map[string]interface{}{
				"subscription": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemorySubscriptionStore) GetByExternalRef(ctx context.Context, externalRef string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subscriptions {
		if sub.ExternalSubscriptionRef == externalRef {
			return sub, nil
		}
	}
	return nil, ierr.NewError("subscription not found").
		WithReportableDetails(map[string]interface{}{
			"subscription": externalRef,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, f *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*subscription.Subscription
	for _, sub := range s.subscriptions {
		if f != nil {
			if f.AccountID != "" && sub.AccountID != f.AccountID {
				continue
			}
			if len(f.SubscriptionStatuses) > 0 && !lo.Contains(f.SubscriptionStatuses, sub.SubscriptionStatus) {
				continue
			}
		}
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscriptions[sub.ID]; !ok {
		return ierr.NewError("subscription not found").
			Mark(ierr.ErrNotFound)
	}
	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = make(map[string]*subscription.Subscription)
}
