// backend-go/cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abc-shortship/backend-go/internal/api"
	"github.com/abc-shortship/backend-go/internal/cache"
	"github.com/abc-shortship/backend-go/internal/config"
	"github.com/abc-shortship/backend-go/internal/domain"
	"github.com/abc-shortship/backend-go/internal/outbox"
	"github.com/abc-shortship/backend-go/internal/service"
	"github.com/abc-shortship/backend-go/internal/shortship"
	"github.com/abc-shortship/backend-go/internal/source"
	"github.com/abc-shortship/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	client := source.NewClient(cfg.Sources)

	dashboardCache, err := cache.NewDashboardCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("dashboard cache unavailable, running without it")
		dashboardCache = cache.NewNoopDashboardCache()
	}
	shortShipCache, err := cache.NewShortShipCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("short-ship cache unavailable, running without it")
		shortShipCache = cache.NewNoopShortShipCache()
	}

	store, err := outbox.OpenStore(cfg.Outbox.Path, cfg.Outbox.CompactThreshold)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("path", cfg.Outbox.Path).Msg("Failed to open outbox log")
	}
	defer store.Close()

	submitter := outbox.NewHTTPSubmitter(cfg.Sources.SaveURL, time.Duration(cfg.Sources.FetchTimeoutSeconds)*time.Second)
	box := outbox.New(store, submitter, outbox.Options{
		DrainInterval: time.Duration(cfg.Outbox.DrainIntervalSeconds) * time.Second,
		DeliveryDelay: time.Duration(cfg.Outbox.DeliveryDelayMillis) * time.Millisecond,
	})

	inventoryService := service.NewInventoryService(client, dashboardCache, domain.ReplenishParams{
		LeadTimeDays: cfg.Replenish.LeadTimeDays,
		SafetyDays:   cfg.Replenish.SafetyDays,
		CoverDays:    cfg.Replenish.CoverDays,
	})
	shortShipService := service.NewShortShipService(
		client,
		shortShipCache,
		box,
		inventoryService,
		shortship.Labels{General: cfg.ShortShip.GeneralLabel, Consumable: cfg.ShortShip.ConsumableLabel},
		cfg.ShortShip.WindowDays,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go box.Run(ctx)

	go func() {
		loadCtx, loadCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer loadCancel()
		if err := inventoryService.Load(loadCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Initial inventory load failed")
			return
		}
		if err := shortShipService.Load(loadCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Initial report load failed")
		}
	}()

	router := api.NewRouter(&api.Services{
		InventoryService: inventoryService,
		ShortShipService: shortShipService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
