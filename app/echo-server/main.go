package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartshop/app/echo-server/router"
	cartService "smartshop/business/cart"
	productService "smartshop/business/product"
	"smartshop/business/recommendation"
	userService "smartshop/business/user"
	"smartshop/internal/middleware"
	"smartshop/internal/repository/notification"
	psqlRepo "smartshop/internal/repository/postgres"
	redisRepo "smartshop/internal/repository/redis"
	"smartshop/internal/rest"
	"smartshop/pkg/config"
	"smartshop/pkg/database"
	redisdb "smartshop/pkg/database/redis"
	"smartshop/pkg/logger"
	"smartshop/pkg/metrics"
	"smartshop/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting SmartShop", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Redis is optional: without it sessions fall back to plain JWT checks
	// and the popular feed is computed on every request.
	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without session store and popular cache", "error", err)
		redisClient = nil
	}

	// Init notification from mailjet
	mailjetEmail := notification.NewMailjetRepository(
		notification.MailjetConfig{
			MailjetBaseURL:           cfg.Mailjet.MailjetBaseUrl,
			MailjetBasicAuthUsername: cfg.Mailjet.MailjetBasicAuthUsername,
			MailjetBasicAuthPassword: cfg.Mailjet.MailjetBasicAuthPassword,
			MailjetSenderEmail:       cfg.Mailjet.MailjetSenderEmail,
			MailjetSenderName:        cfg.Mailjet.MailjetSenderName,
		},
	)

	// Init validate
	validate := validator.New()

	// Init repo
	userRepo := psqlRepo.NewUserRepository(db)
	productRepo := psqlRepo.NewProductRepository(db)
	interactionRepo := psqlRepo.NewInteractionRepository(db)
	cartRepo := psqlRepo.NewCartRepository(db)

	var tokenRepo userService.TokenRepository
	var popularCache recommendation.PopularCache
	if redisClient != nil {
		tokenRepo = redisRepo.NewTokenRepository(redisClient)
		popularCache = redisRepo.NewPopularCache(redisClient, cfg.Recommender.PopularCacheTTL)
	}

	// Init service
	userSvc := userService.NewUserService(
		userRepo,
		validate,
		mailjetEmail,
		tokenRepo,
		cfg.JWT.TokenTTL,
		cfg.App.AppEmailVerificationKey,
		cfg.App.AppDeploymentUrl,
	)
	productSvc := productService.NewProductService(productRepo, interactionRepo)
	cartSvc := cartService.NewCartService(cartRepo, productRepo, interactionRepo)
	recoSvc := recommendation.NewRecommendationService(
		interactionRepo,
		productRepo,
		userRepo,
		popularCache,
		recommendation.ConfigFromEnv(cfg.Recommender),
	)

	// Init handler
	userHandler := rest.NewUserHandler(userSvc)
	productHandler := rest.NewProductHandler(productSvc)
	cartHandler := rest.NewCartHandler(cartSvc)
	recoHandler := rest.NewRecommendationHandler(recoSvc)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Auth middleware
	authRequired := middleware.AuthMiddleware()
	if tokenRepo != nil {
		authRequired = middleware.AuthMiddlewareWithRedis(userSvc)
	}
	adminOnly := middleware.AdminOnly()
	selfOrAdmin := middleware.SelfOrAdmin()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupUserRoutes(api, userHandler, authRequired, adminOnly, selfOrAdmin)
	router.SetupProductRoutes(api, productHandler, authRequired, adminOnly)
	router.SetupCartRoutes(api, cartHandler, authRequired)
	router.SetupRecommendationRoutes(api, recoHandler, authRequired)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if redisClient != nil {
		redisdb.CloseRedisClient(redisClient)
	}

	logger.Info("Server stopped")
}
