package dashboard

import (
	apphttp "github.com/jadu-codes/flow-layer-2/internal/http"
	"github.com/jadu-codes/flow-layer-2/platform/config"
	"github.com/jadu-codes/flow-layer-2/platform/httpkit"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"
	"github.com/jadu-codes/flow-layer-2/platform/validator"
)

// Module is the dashboard module implementing http.Module.
type Module struct {
	service *Service
	handler *Handler
	secret  string
}

// NewModule creates the dashboard module. cache may be nil.
func NewModule(cfg config.DashboardConfig, repo LeadLister, cache *Cache, val *validator.Validator, m *metrics.Metrics, log *logger.Logger) *Module {
	if cfg.GetDashboardJWTSecret() == "" {
		log.Warn("DASHBOARD_JWT_SECRET not configured; dashboard is public")
	}
	service := NewService(repo, cache, cfg.GetDashboardLocation(), cfg.GetDashboardLimit(), m, log)
	return &Module{
		service: service,
		handler: NewHandler(service, val),
		secret:  cfg.GetDashboardJWTSecret(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "dashboard"
}

// Service exposes the snapshot service.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts the page at /leads and the feed at /api/v1/leads.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	auth := httpkit.AuthRequired(m.secret)
	ctx.Root.GET("/leads", auth, m.handler.HandlePage)
	ctx.V1.GET("/leads", auth, m.handler.HandleList)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
