package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	adimportapp "github.com/lagerhub/backend/internal/application/adimport"
	listingapp "github.com/lagerhub/backend/internal/application/listing"
	pricingapp "github.com/lagerhub/backend/internal/application/pricing"
	stockapp "github.com/lagerhub/backend/internal/application/stock"
	"github.com/lagerhub/backend/internal/infrastructure/config"
	"github.com/lagerhub/backend/internal/infrastructure/logger"
	"github.com/lagerhub/backend/internal/interfaces/http/handler"
	"github.com/lagerhub/backend/internal/interfaces/http/middleware"
	"github.com/lagerhub/backend/internal/interfaces/ws"
)

// Services bundles the application services the router exposes
type Services struct {
	Stock   *stockapp.Service
	Listing *listingapp.Service
	Pricing *pricingapp.Service
	Import  *adimportapp.Service
}

// New builds the gin engine with all middleware and routes registered
func New(cfg *config.Config, services Services, hub *ws.Hub, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.RegisterValidators()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.CORS(cfg.HTTP.CORSAllowOrigins),
		logger.GinMiddleware(log),
		logger.GinRecovery(log),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"app":     cfg.App.Name,
			"time":    time.Now().Format(time.RFC3339),
			"clients": hub.ClientCount(),
		})
	})

	engine.GET("/ws", gin.WrapF(hub.Handler))

	api := engine.Group("/api")
	handler.NewStockHandler(services.Stock, hub, log).RegisterRoutes(api)
	handler.NewListingHandler(services.Listing, hub, log).RegisterRoutes(api)
	handler.NewPriceHandler(services.Pricing, services.Stock, hub, log).RegisterRoutes(api)
	handler.NewImportHandler(services.Import, hub, log).RegisterRoutes(api)

	return engine
}
