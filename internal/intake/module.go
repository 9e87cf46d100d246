package intake

import (
	apphttp "github.com/jadu-codes/flow-layer-2/internal/http"
	"github.com/jadu-codes/flow-layer-2/internal/leads/normalize"
	"github.com/jadu-codes/flow-layer-2/platform/config"
	"github.com/jadu-codes/flow-layer-2/platform/httpkit"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"

	"github.com/gin-gonic/gin"
)

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	auth    gin.HandlerFunc
	limiter *httpkit.IPRateLimiter
}

// NewModule creates the intake module. A missing secret is logged as a
// warning since anyone can then submit leads.
func NewModule(cfg config.IntakeConfig, repo LeadInserter, normalizer *normalize.Normalizer, enricher Enricher, cache CacheInvalidator, m *metrics.Metrics, log *logger.Logger) *Module {
	switch {
	case cfg.GetIntakeSecret() == "":
		log.Warn("INTAKE_SECRET not configured; intake endpoint accepts unauthenticated requests")
	case cfg.GetIntakeAuthMode() == config.IntakeAuthPermissive:
		log.Warn("intake auth is permissive; requests without the secret header are accepted",
			"header", SecretHeader,
		)
	}

	service := NewService(repo, normalizer, enricher, cache, m, log)
	return &Module{
		handler: NewHandler(service),
		auth:    SecretAuthMiddleware(cfg.GetIntakeSecret(), cfg.GetIntakeAuthMode(), m, log),
		limiter: httpkit.PerMinute(cfg.GetIntakeRatePerMinute(), cfg.GetIntakeRateBurst(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// RegisterRoutes mounts the webhook at /intake/phone-call and under /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	for _, group := range []*gin.RouterGroup{ctx.Root, ctx.V1} {
		intake := group.Group("/intake")
		intake.GET("/phone-call", m.handler.HandleLiveness)
		intake.POST("/phone-call", m.limiter.RateLimit(), m.auth, m.handler.HandlePhoneCall)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
