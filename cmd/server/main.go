package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nimbleretail/poolalloc/internal/api"
	"github.com/nimbleretail/poolalloc/internal/cache"
	"github.com/nimbleretail/poolalloc/internal/config"
	"github.com/nimbleretail/poolalloc/internal/engine"
	"github.com/nimbleretail/poolalloc/internal/ingest"
	"github.com/nimbleretail/poolalloc/internal/service"
	"github.com/nimbleretail/poolalloc/internal/storage"
	"github.com/nimbleretail/poolalloc/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	var store storage.ObjectStore
	if cfg.ObjectStore.Endpoint != "" {
		minioStore, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:  cfg.ObjectStore.Endpoint,
			AccessKey: cfg.ObjectStore.AccessKey,
			SecretKey: cfg.ObjectStore.SecretKey,
			UseSSL:    cfg.ObjectStore.UseSSL,
		})
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("failed to initialize object store")
		}
		store = minioStore
	}

	summaryCache, err := cache.NewSummaryCache(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to initialize cache")
	}

	fetcher := ingest.NewFetcher(ingest.Sources{
		Sales:         cfg.Sources.Sales,
		LocationStock: cfg.Sources.LocationStock,
		PoolStock:     cfg.Sources.PoolStock,
		StyleRemarks:  cfg.Sources.StyleRemarks,
	}, store, time.Duration(cfg.Sources.TimeoutSeconds)*time.Second)

	eng := engine.New(engine.Config{
		AllocationRatio:     cfg.Engine.AllocationRatio,
		TargetStockDays:     cfg.Engine.TargetStockDays,
		RecallThresholdDays: cfg.Engine.RecallThresholdDays,
		ClosedRemark:        cfg.Engine.ClosedRemark,
		FallbackLocations:   cfg.Engine.FallbackLocations,
	})

	planService := service.NewPlanService(fetcher, eng, summaryCache)

	// Compute the first plan before accepting traffic. A failure here is
	// not fatal: the API serves 503 until a refresh succeeds.
	initCtx, cancelInit := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := planService.Refresh(initCtx); err != nil {
		logger.Log.Warn().Err(err).Msg("initial plan refresh failed, serving without a plan")
	}
	cancelInit()

	router := api.NewRouter(planService, cfg.Server.AllowedOrigins, cfg.Engine.TopN)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
