package cache

import (
	"github.com/renderbase/renderbase/internal/config"
	"github.com/renderbase/renderbase/internal/logger"
)

// Initialize initializes the cache system
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Info("Initializing cache system")

	c := NewInMemoryCache(cfg)

	log.Info("Cache system initialized")

	return c
}
