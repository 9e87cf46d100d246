// Package leadenrichment provides the composition root for lead enrichment.
package leadenrichment

import (
	"github.com/jadu-codes/flow-layer-2/internal/leadenrichment/client"
	"github.com/jadu-codes/flow-layer-2/internal/leadenrichment/service"
	"github.com/jadu-codes/flow-layer-2/platform/config"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"
	"github.com/jadu-codes/flow-layer-2/platform/validator"
)

// Module wires the lead enrichment service.
type Module struct {
	service *service.Service
}

// NewModule creates a new lead enrichment module. Without an API key, or
// when the agent cannot be built, the service is disabled and every
// extraction returns nil.
func NewModule(cfg config.LLMConfig, val *validator.Validator, log *logger.Logger) *Module {
	var generator service.Generator
	if cfg.IsLLMEnabled() {
		cli, err := client.New(cfg)
		if err != nil {
			log.Error("lead enrichment disabled", "error", err)
		} else {
			generator = cli
		}
	} else {
		log.Info("lead enrichment disabled: no LLM API key configured")
	}

	svc := service.New(generator, val, log, cfg.GetLLMTimeout())
	return &Module{service: svc}
}

// Service returns the enrichment service.
func (m *Module) Service() *service.Service {
	return m.service
}

// Applier returns an applier that persists enrichment through repo.
func (m *Module) Applier(repo LeadUpdater, cache Invalidator, mt *metrics.Metrics, log *logger.Logger) *Applier {
	return NewApplier(m.service, repo, cache, mt, log)
}
