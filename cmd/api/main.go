package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/dukapos/dukapos-api/internal/application/service"
	"github.com/dukapos/dukapos-api/internal/config"
	"github.com/dukapos/dukapos-api/internal/infrastructure/cache"
	"github.com/dukapos/dukapos-api/internal/infrastructure/database"
	"github.com/dukapos/dukapos-api/internal/infrastructure/repository"
	"github.com/dukapos/dukapos-api/internal/presentation/http/handler"
	"github.com/dukapos/dukapos-api/internal/presentation/http/routes"
	"github.com/dukapos/dukapos-api/pkg/oauth"
	"github.com/dukapos/dukapos-api/pkg/printer"
	"github.com/dukapos/dukapos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default branch, accounts and admin user
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	dayRepo := repository.NewDaySessionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Product cache: redis when configured, otherwise a no-op fallback
	var productCache cache.ProductCache = cache.NewNoopProductCache()
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisProductCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: redis unreachable at %s, product cache disabled: %v", cfg.Redis.Addr, err)
		} else {
			productCache = redisCache
		}
	}

	// Initialize Google OAuth service
	googleOAuth := oauth.NewGoogleOAuthService(
		cfg.OAuth.GoogleClientID,
		cfg.OAuth.GoogleClientSecret,
		cfg.OAuth.GoogleRedirectURL,
	)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, googleOAuth)
	productService := service.NewProductService(productRepo, categoryRepo, productCache, cfg.Redis.TTL)
	partyService := service.NewPartyService(customerRepo, vendorRepo)
	checkoutService := service.NewCheckoutService(transactionRepo, productRepo, customerRepo, dayRepo, cfg.POS.AutosaveWindow)
	cashService := service.NewCashService(dayRepo, transactionRepo, accountRepo)
	transactionService := service.NewTransactionService(transactionRepo, productRepo, customerRepo, vendorRepo, accountRepo)
	receivablesService := service.NewReceivablesService(customerRepo, vendorRepo, transactionRepo)
	dashboardService := service.NewDashboardService(transactionRepo, productRepo, customerRepo, vendorRepo, dayRepo)
	printerService := service.NewPrinterService(thermalPrinter, transactionRepo, cfg.Printer.Type, cfg.Printer.StoreName, cfg.Printer.CharWidth)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Product:     handler.NewProductHandler(productService),
		Party:       handler.NewPartyHandler(partyService, receivablesService),
		Checkout:    handler.NewCheckoutHandler(checkoutService),
		Cash:        handler.NewCashHandler(cashService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Dashboard:   handler.NewDashboardHandler(dashboardService),
		Printer:     handler.NewPrinterHandler(printerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
