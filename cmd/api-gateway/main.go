package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/eventlink-api/api/swagger"
	"github.com/noah-isme/eventlink-api/internal/dto"
	"github.com/noah-isme/eventlink-api/internal/handler"
	internalmiddleware "github.com/noah-isme/eventlink-api/internal/middleware"
	"github.com/noah-isme/eventlink-api/internal/repository"
	"github.com/noah-isme/eventlink-api/internal/service"
	"github.com/noah-isme/eventlink-api/pkg/cache"
	"github.com/noah-isme/eventlink-api/pkg/config"
	"github.com/noah-isme/eventlink-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/eventlink-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/eventlink-api/pkg/middleware/requestid"
	"github.com/noah-isme/eventlink-api/pkg/openai"
)

// @title EventLink API
// @version 1.0.0
// @description Turns free-text event descriptions into Google Calendar links.
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var store service.CounterStore
	switch cfg.RateLimit.Backend {
	case config.RateLimitBackendMemory:
		store = repository.NewMemoryCounterRepository(nil)
	default:
		redisClient := cache.NewRedis(cfg.Redis, cfg.RateLimit.Timeout)
		if err := cache.Ping(context.Background(), redisClient); err != nil {
			logr.Warn("redis unreachable at startup, rate limiting will fail open", zap.Error(err))
		}
		counterRepo := repository.NewCounterRepository(redisClient, logr)
		defer counterRepo.Close() //nolint:errcheck
		store = counterRepo
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, redisClient) }
	}

	if cfg.OpenAI.APIKey == "" {
		logr.Warn("OPENAI_API_KEY is not set, parse requests will fail with a configuration error")
	}

	openaiClient := openai.NewClient(cfg.OpenAI)
	extractor := service.NewEventExtractor(openaiClient, metricsSvc, logr)
	limiter := service.NewRateLimiter(store, cfg.RateLimit, service.ParseEventEndpoint, metricsSvc, logr)
	eventSvc := service.NewEventLinkService(extractor, limiter, service.StaticAPIKey(cfg.OpenAI.APIKey), logr)

	eventHandler := handler.NewEventHandler(eventSvc, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, dto.ClientIDHeader))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metricsSvc))
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.POST("/parse-event", eventHandler.Parse)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "model", openaiClient.Model(), "rate_limit_backend", cfg.RateLimit.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logr.Info("signal received, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OpenAI.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
