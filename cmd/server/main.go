package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/scheduler"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/internal/websocket"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
		Service:     "storefront",
	})

	loc := cfg.Server.Location()
	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"time_zone":   loc.String(),
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed admin account", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs carts and the logout blacklist. Without it carts live in
	// process memory and logout is client side only.
	var (
		cartStore   session.CartStore = session.NewMemoryCartStore()
		revoker     service.TokenRevoker
		revocations middleware.RevocationChecker
	)
	if client, err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, using in-memory carts", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		blacklist := redis.NewTokenBlacklist(client)
		cartStore = session.NewRedisCartStore(client, cfg.Session.TTL)
		revoker = blacklist
		revocations = blacklist
	}

	gormDB := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	planRepo := repository.NewPlanRepository(gormDB)
	subRepo := repository.NewSubscriptionRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)
	consultRepo := repository.NewConsultationRepository(gormDB)
	newsRepo := repository.NewNewsRepository(gormDB)
	pageViewRepo := repository.NewPageViewRepository(gormDB)
	reportRepo := repository.NewReportRepository(gormDB)

	// Staff live feed
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		revoker,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	accountService := service.NewAccountService(userRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, newsRepo)
	planService := service.NewPlanService(planRepo, productRepo, subRepo)
	cartService := service.NewCartService(cartStore, productRepo, planRepo)
	orderService := service.NewOrderService(orderRepo, subRepo, cartStore, hub, gormDB)
	consultationService := service.NewConsultationService(consultRepo, productRepo, userRepo, orderRepo, hub)
	newsService := service.NewNewsService(newsRepo)
	pageViewService := service.NewPageViewService(pageViewRepo, loc)
	reportService := service.NewReportService(reportRepo, loc)

	// Subscription expiry job
	expiry := scheduler.NewSubscriptionScheduler(planService, cfg.Scheduler.SubscriptionExpirySpec, loc)
	if err := expiry.Start(); err != nil {
		logger.Fatal("Failed to start subscription scheduler", err)
	}
	defer expiry.Stop()

	// Initialize controllers
	controllers := router.Controllers{
		Auth:         controller.NewAuthController(authService),
		Profile:      controller.NewProfileController(accountService),
		User:         controller.NewUserController(accountService, authService),
		Catalog:      controller.NewCatalogController(catalogService, planService),
		Plan:         controller.NewPlanController(planService),
		Cart:         controller.NewCartController(cartService),
		Order:        controller.NewOrderController(orderService, authService, cfg.Server.CheckoutSuccessURL),
		Consultation: controller.NewConsultationController(consultationService, authService),
		News:         controller.NewNewsController(newsService, authService),
		Report:       controller.NewReportController(reportService, authService),
		Upload:       controller.NewUploadController(storage.NewS3Storage(cfg.S3)),
		Feed:         controller.NewFeedController(hub, cfg.CORS.AllowedOrigins),
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, revocations).WithAccounts(authService)

	r := router.NewRouter(controllers, authMiddleware, pageViewService, cfg)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
