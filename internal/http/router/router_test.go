package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "github.com/jadu-codes/flow-layer-2/internal/http"
	"github.com/jadu-codes/flow-layer-2/platform/logger"
	"github.com/jadu-codes/flow-layer-2/platform/metrics"

	"github.com/gin-gonic/gin"
)

type stubHealth struct{ err error }

func (s stubHealth) Ping(ctx context.Context) error { return s.err }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestProbesAndModules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(&apphttp.App{
		Logger:  logger.Discard(),
		Health:  stubHealth{},
		Metrics: metrics.New(),
		Modules: []apphttp.Module{pingModule{}},
	})

	for _, path := range []string{"/api/health", "/api/ready", "/api/v1/ping"} {
		if rec := serve(engine, path); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}

	rec := serve(engine, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "flowlayer_http_request_duration_seconds") {
		t.Fatal("expected request duration histogram in exposition")
	}
}

func TestReadyReportsDatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := New(&apphttp.App{
		Logger: logger.Discard(),
		Health: stubHealth{err: errors.New("connection refused")},
	})

	rec := serve(engine, "/api/ready")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}
