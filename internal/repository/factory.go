package repository

import (
	"github.com/renderbase/renderbase/internal/cache"
	"github.com/renderbase/renderbase/internal/domain/plan"
	"github.com/renderbase/renderbase/internal/domain/subscription"
	"github.com/renderbase/renderbase/internal/domain/wallet"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/postgres"
	postgresRepo "github.com/renderbase/renderbase/internal/repository/postgres"
)

func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return postgresRepo.NewWalletRepository(db, logger)
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger, cache)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}
