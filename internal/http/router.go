// Package httpapi wires the Gin engines to the chat pipeline.
//
// Two engines are built: the public one recognises only
// POST /chat/messages; the ops one serves health, Prometheus metrics and,
// when enabled, Swagger UI. Keeping them apart means the public listener
// answers 404 for every other path and method.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/telemacher/docs"
	"github.com/tbourn/telemacher/internal/config"
	"github.com/tbourn/telemacher/internal/domain"
	"github.com/tbourn/telemacher/internal/http/handlers"
	"github.com/tbourn/telemacher/internal/http/middleware"
	"github.com/tbourn/telemacher/internal/repo"
	"github.com/tbourn/telemacher/internal/services"
)

// exchangeRepoShim adapts repo.CreateExchange to services.ExchangeRepo.
type exchangeRepoShim struct{}

func (exchangeRepoShim) CreateExchange(ctx context.Context, db *gorm.DB, userID uint64, kind, text, reply string) (*domain.Exchange, error) {
	return repo.CreateExchange(ctx, db, userID, kind, text, reply)
}

// ChatPath is the only route on the public engine.
const ChatPath = "/chat/messages"

// RegisterRoutes mounts the chat endpoint and its middleware on r.
// db may be nil, in which case no transcript is kept.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID, Logger, Recovery
//  3. Body size cap
//  4. Metrics
//  5. Per-IP rate limiter
//  6. gzip, security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, weather services.Responder, cfg config.Config) {
	r.HandleMethodNotAllowed = false
	r.RedirectTrailingSlash = false

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.LimitBody(cfg.MaxBodyBytes))
	r.Use(middleware.Metrics())

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, 0)
	r.Use(rl.Handler())

	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})

	var transcripts services.ExchangeRepo
	if db != nil {
		transcripts = exchangeRepoShim{}
	}
	h := handlers.New(services.NewChatService(weather, db, transcripts))

	r.POST(ChatPath, middleware.EchoOrigin(), h.PostChatMessage)
}

// RegisterOpsRoutes mounts /health, /metrics and optionally /swagger on r.
func RegisterOpsRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})

	r.GET("/health", health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// health reports "ok", or 503 when the transcript database is configured
// but unreachable.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := pingDB(ctx, db); err != nil {
				middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database unreachable")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
