package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	adimportapp "github.com/lagerhub/backend/internal/application/adimport"
	listingapp "github.com/lagerhub/backend/internal/application/listing"
	pricingapp "github.com/lagerhub/backend/internal/application/pricing"
	stockapp "github.com/lagerhub/backend/internal/application/stock"
	syncapp "github.com/lagerhub/backend/internal/application/sync"
	"github.com/lagerhub/backend/internal/infrastructure/cache"
	"github.com/lagerhub/backend/internal/infrastructure/config"
	"github.com/lagerhub/backend/internal/infrastructure/event"
	"github.com/lagerhub/backend/internal/infrastructure/logger"
	"github.com/lagerhub/backend/internal/infrastructure/persistence"
	"github.com/lagerhub/backend/internal/infrastructure/scraping"
	"github.com/lagerhub/backend/internal/interfaces/http/router"
	"github.com/lagerhub/backend/internal/interfaces/ws"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting LagerHub backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// JSON collection stores, one file per collection
	stockRepo := persistence.NewStockRepository(cfg.Storage.StockPath(), log)
	listingRepo := persistence.NewListingRepository(cfg.Storage.ListingsPath(), log)
	draftRepo := persistence.NewDraftRepository(cfg.Storage.ImportsPath(), log)
	log.Info("Collection stores opened", zap.String("data_dir", cfg.Storage.DataDir))

	// Browser-backed marketplace sources
	browser := scraping.NewBrowser(cfg.Scraper, log)
	defer func() {
		if err := browser.Close(); err != nil {
			log.Error("Error closing browser", zap.Error(err))
		}
	}()
	sources := []scraping.Source{
		scraping.NewOttoSource(browser, log),
		scraping.NewAmazonSource(browser, log),
	}

	// Price search cache
	priceCache, err := cache.NewPriceCache(cfg.Cache, log)
	if err != nil {
		log.Fatal("Failed to initialize price cache", zap.Error(err))
	}
	defer func() {
		if err := priceCache.Close(); err != nil {
			log.Error("Error closing price cache", zap.Error(err))
		}
	}()

	// Application services
	stockService := stockapp.NewService(stockRepo, cfg.Match.AcceptThreshold, log)
	listingService := listingapp.NewService(listingRepo, log)
	pricingService := pricingapp.NewService(sources, priceCache, stockRepo, log)
	importService := adimportapp.NewService(draftRepo, stockRepo, sources, cfg.Import.PriceFactor, log)

	// Event bus wires stock mutations to the ad collection
	eventBus := event.NewInMemoryEventBus(log)
	stockService.SetEventPublisher(eventBus)
	syncProtocol := syncapp.NewProtocol(listingService, log)
	syncProtocol.Register(eventBus)
	log.Info("Stock-to-listing synchronization registered",
		zap.Strings("events", syncProtocol.EventTypes()))

	// Websocket hub pushes collection updates to connected clients
	hub := ws.NewHub(log)

	engine := router.New(cfg, router.Services{
		Stock:   stockService,
		Listing: listingService,
		Pricing: pricingService,
		Import:  importService,
	}, hub, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
