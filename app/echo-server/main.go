package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"marketplace/app/echo-server/router"
	"marketplace/business/product"
	"marketplace/business/recommend"
	"marketplace/internal/middleware"
	psqlRepo "marketplace/internal/repository/postgres"
	redisRepo "marketplace/internal/repository/redis"
	"marketplace/internal/rest"
	"marketplace/pkg/config"
	"marketplace/pkg/database"
	redisdb "marketplace/pkg/database/redis"
	"marketplace/pkg/logger"
	"marketplace/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func recommendConfig(cfg *config.Config) recommend.Config {
	rc := recommend.DefaultConfig()
	rc.DefaultLimit = cfg.Recommendation.DefaultLimit
	rc.FallbackPerItem = cfg.Recommendation.FallbackPerItem
	rc.IndexTopK = cfg.Recommendation.IndexTopK
	rc.IndexWorkers = cfg.Recommendation.IndexWorkers
	rc.MirrorTTL = cfg.Recommendation.MirrorTTL
	rc.Behavior = recommend.RetentionConfig{
		MaxEvents: cfg.Recommendation.BehaviorMaxEvents,
		Retention: cfg.Recommendation.BehaviorRetention,
	}
	return rc
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting Marketplace API", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Init repo
	productsRepo := psqlRepo.NewProductRepository(db)

	var mirror recommend.IndexMirror
	if cfg.Redis.Enabled {
		redisClient, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, similarity index will not be mirrored", "error", err)
		} else {
			defer func() {
				if err := redisdb.CloseRedisClient(redisClient); err != nil {
					logger.Error("Failed to close Redis client", "error", err)
				}
			}()
			mirror = redisRepo.NewSimilarityIndexRepository(redisClient, cfg.Redis.KeyPrefix)
			logger.Info("Redis connected successfully")
		}
	}

	// Init service
	productService := product.NewProductService(productsRepo)
	recoService := recommend.NewService(productsRepo, mirror, recommendConfig(cfg))

	// Init handler
	productHandler := rest.NewProductHandler(productService)
	recoHandler := rest.NewRecommendationHandler(recoService, productService).WithTimeout(cfg.Server.RequestTimeout)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestTrace())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))

	authRequired := middleware.AuthMiddleware(cfg.JWT.SecretKey)
	optionalAuth := middleware.OptionalAuth(cfg.JWT.SecretKey)

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupProductRoutes(api, productHandler, authRequired, middleware.VendorOrAdmin())
	router.SetRecommendationRoutes(api, recoHandler, optionalAuth)
	router.SetRecommendationAdminRoutes(api, recoHandler, authRequired, middleware.AdminOnly())
	router.SetMetricsRoute(e)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Warm the similarity index, then keep it fresh
	go func() {
		if err := recoService.RefreshFromCatalog(bgCtx); err != nil {
			logger.Warn("Initial similarity index build failed", "error", err)
		}
		recoService.RunIndexRefresher(bgCtx, cfg.Recommendation.IndexRefreshInterval)
	}()

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
