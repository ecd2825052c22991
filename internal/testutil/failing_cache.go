package testutil

import (
	"context"
	"time"

	"github.com/renderbase/renderbase/internal/cache"
)

var _ cache.Cache = (*FailingCache)(nil)

// FailingCache panics on every operation. Tests use it to prove that cache
// failures never affect ledger outcomes.
type FailingCache struct{}

func NewFailingCache() *FailingCache {
	return &FailingCache{}
}

func (c *FailingCache) Get(_ context.Context, key string) (interface{}, bool) {
	panic("cache get failed: " + key)
}

func (c *FailingCache) Set(_ context.Context, key string, _ interface{}, _ time.Duration) {
	panic("cache set failed: " + key)
}

func (c *FailingCache) Delete(_ context.Context, key string) {
	panic("cache delete failed: " + key)
}

func (c *FailingCache) DeleteByPrefix(_ context.Context, prefix string) {
	panic("cache delete by prefix failed: " + prefix)
}

func (c *FailingCache) Flush(_ context.Context) {
	panic("cache flush failed")
}
