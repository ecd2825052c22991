package provider

import (
	"github.com/renderbase/renderbase/internal/config"
	"github.com/renderbase/renderbase/internal/httpclient"
	"github.com/renderbase/renderbase/internal/logger"
)

// Initialize builds the provider registry from configuration
func Initialize(cfg *config.Configuration, client httpclient.Client, log *logger.Logger) *Registry {
	registry := NewRegistry()

	for _, pc := range cfg.Providers {
		registry.Register(NewHTTPProvider(pc.Name, pc.Endpoint, pc.APIKey, pc.JobCost, client))
		log.Infow("registered render provider",
			"provider", pc.Name,
			"endpoint", pc.Endpoint,
		)
	}

	return registry
}
