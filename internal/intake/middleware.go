package intake

import (
	"crypto/subtle"
	"strings"

	"github.com/jadu-codes/flow-layer-2/platform/apperr"
	"github.com/jadu-codes/flow-layer-2/platform/config"
	"github.com/jadu-codes/flow-layer-2/platform/httpkit"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"

	"github.com/gin-gonic/gin"
)

// SecretHeader carries the shared intake secret.
const SecretHeader = "X-Intake-Secret"

// Authorized applies the configured secret policy to a header value.
// Without a configured secret every request passes. In permissive mode a
// missing header passes and only a wrong one is rejected. In strict mode
// the header is required.
func Authorized(secret string, mode config.IntakeAuthMode, header string) bool {
	if secret == "" {
		return true
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return mode != config.IntakeAuthStrict
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1
}

// SecretAuthMiddleware rejects requests that fail the secret policy before
// the body is read.
func SecretAuthMiddleware(secret string, mode config.IntakeAuthMode, m *metrics.Metrics, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Authorized(secret, mode, c.GetHeader(SecretHeader)) {
			log.WithContext(c.Request.Context()).Warn("intake request with wrong secret",
				"client_ip", c.ClientIP(),
				"mode", string(mode),
			)
			m.IntakeRequest(metrics.OutcomeUnauthorized, "unknown")
			httpkit.HandleError(c, apperr.Unauthorized("Unauthorized"))
			c.Abort()
			return
		}
		c.Next()
	}
}
