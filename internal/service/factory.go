package service

import (
	"github.com/renderbase/renderbase/internal/cache"
	"github.com/renderbase/renderbase/internal/config"
	"github.com/renderbase/renderbase/internal/domain/plan"
	"github.com/renderbase/renderbase/internal/domain/provider"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	"github.com/renderbase/renderbase/internal/httpclient"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache
	Client httpclient.Client

	// Repositories
	WalletRepo wallet.Repository
	PlanRepo   plan.Repository
	SubRepo    subscription.Repository

	// Providers
	ProviderRegistry *provider.Registry
}

// NewServiceParams assembles the shared service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	client httpclient.Client,
	walletRepo wallet.Repository,
	planRepo plan.Repository,
	subRepo subscription.Repository,
	providerRegistry *provider.Registry,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Cache:            cache,
		Client:           client,
		WalletRepo:       walletRepo,
		PlanRepo:         planRepo,
		SubRepo:          subRepo,
		ProviderRegistry: providerRegistry,
	}
}
