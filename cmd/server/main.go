package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notesmith/autotitle/internal/backends"
	"github.com/notesmith/autotitle/internal/config"
	"github.com/notesmith/autotitle/internal/dedupe"
	"github.com/notesmith/autotitle/internal/documents"
	"github.com/notesmith/autotitle/internal/logger"
	"github.com/notesmith/autotitle/internal/modelcache"
	"github.com/notesmith/autotitle/internal/titlegen"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(logger.FromConfig(cfg.LogLevel, cfg.LogFormat))

	log.Info("setting gin mode", slog.String("mode", cfg.GinMode))
	gin.SetMode(cfg.GinMode)

	// Handlers never hold a config copy; they take a fresh snapshot per
	// request through this closure.
	snapshot := func() config.GenerationConfig { return cfg.Generation }

	// Initialize services
	client := backends.NewClient(time.Duration(cfg.CatalogTimeoutSeconds)*time.Second, log)
	generator := titlegen.NewGenerator(client, log)
	cache := modelcache.New(client, snapshot, cfg.ModelCacheTTL, log)
	detector := dedupe.NewDetector(cfg.Duplicates)
	store := documents.NewFSStore(cfg.DocumentsRoot)
	processor := documents.NewProcessor(generator, detector, store, snapshot, log)

	// Initialize handlers
	titleHandler := titlegen.NewHandler(generator, snapshot, log)
	modelHandler := modelcache.NewHandler(cache, log)
	duplicateHandler := dedupe.NewHandler(detector, log)
	documentHandler := documents.NewHandler(processor, log)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/titles", titleHandler.GenerateTitle)

		models := api.Group("/models")
		{
			models.GET("/:backend", modelHandler.GetModels)
			models.POST("/:backend/refresh", modelHandler.RefreshModels)
			models.DELETE("", modelHandler.ClearCache)
		}

		duplicates := api.Group("/duplicates")
		{
			duplicates.POST("/detect", duplicateHandler.DetectDuplicates)
			duplicates.POST("/remove", duplicateHandler.RemoveDuplicates)
		}

		docs := api.Group("/documents")
		{
			docs.POST("/retitle", documentHandler.Retitle)
		}
	}

	// Scheduled catalogue refresh is opt-in via CATALOG_REFRESH_SCHEDULE.
	var refresher *modelcache.Refresher
	if cfg.CatalogRefreshSchedule != "" {
		refresher, err = modelcache.NewRefresher(cache, cfg.CatalogRefreshSchedule, backends.IDs(), log)
		if err != nil {
			log.Error("invalid catalogue refresh schedule",
				slog.String("schedule", cfg.CatalogRefreshSchedule),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		refresher.Start()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	if refresher != nil {
		refresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ServerShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server exited")
}

// requestIDMiddleware tags every request context with a request id so log
// lines across the pipeline can be correlated.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}
