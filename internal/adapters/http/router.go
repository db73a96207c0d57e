package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jostojic/quotescreen/internal/adapters/http/handlers"
	"github.com/jostojic/quotescreen/internal/adapters/http/middleware"
	"github.com/jostojic/quotescreen/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds API requests. A full e-paper refresh takes a
// few seconds, so this leaves room for one commit.
const DefaultRequestTimeout = 15 * time.Second

// RouterConfig names the handlers mounted by SetupRouter. Nil handlers are
// skipped.
type RouterConfig struct {
	ServiceName string

	Health  *handlers.HealthHandler
	Quotes  *handlers.QuoteHandler
	Display *handlers.DisplayHandler
	Network *handlers.NetworkHandler

	// Timeout applies to /api/v1 only. Zero disables it.
	Timeout time.Duration
}

// SetupRouter installs the middleware chain and routes on engine:
//
//	recovery, request id, correlation id, otel, trace header, logging
//	/-/         live, ready, build, metrics
//	/api/v1/    quotes, display, network (with the request timeout)
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.ServiceName),
		telemetry.TraceHeader(),
		middleware.Logging(),
	)

	if cfg.Health != nil {
		cfg.Health.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		api.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.Quotes != nil {
		cfg.Quotes.RegisterQuoteRoutes(api)
	}

	if cfg.Display != nil {
		cfg.Display.RegisterDisplayRoutes(api)
	}

	if cfg.Network != nil {
		cfg.Network.RegisterNetworkRoutes(api)
	}
}
