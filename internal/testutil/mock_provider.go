package testutil

import (
	"context"
	"sync"

	"github.com/renderbase/renderbase/internal/domain/provider"
)

var _ provider.Provider = (*MockProvider)(nil)

// MockProvider is a scripted render provider for tests
type MockProvider struct {
	mu sync.Mutex

	ProviderName string
	JobCost      int64
	SubmitErr    error
	JobRef       string

	SubmitCalls []*provider.SubmitRequest
}

func NewMockProvider(name string, cost int64) *MockProvider {
	return &MockProvider{
		ProviderName: name,
		JobCost:      cost,
		JobRef:       "ext_job_001",
	}
}

func (p *MockProvider) Name() string {
	return p.ProviderName
}

func (p *MockProvider) Cost(_ *provider.SubmitRequest) int64 {
	return p.JobCost
}

func (p *MockProvider) Submit(_ context.Context, req *provider.SubmitRequest) (*provider.SubmitResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SubmitCalls = append(p.SubmitCalls, req)
	if p.SubmitErr != nil {
		return nil, p.SubmitErr
	}
	return &provider.SubmitResponse{ProviderJobRef: p.JobRef}, nil
}
