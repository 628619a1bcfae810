package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dukapos/dukapos-api/internal/config"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	domainRepo "github.com/dukapos/dukapos-api/internal/domain/repository"
	"github.com/dukapos/dukapos-api/internal/presentation/http/handler"
	"github.com/dukapos/dukapos-api/internal/presentation/http/middleware"
	"github.com/dukapos/dukapos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth        *handler.AuthHandler
	Product     *handler.ProductHandler
	Party       *handler.PartyHandler
	Checkout    *handler.CheckoutHandler
	Cash        *handler.CashHandler
	Transaction *handler.TransactionHandler
	Dashboard   *handler.DashboardHandler
	Printer     *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-operator rate limiter
		rateLimiter := middleware.NewOperatorRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		// Google OAuth routes
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Dashboard
	protected.GET("/dashboard", middleware.RequireRole(enum.RoleAdmin, enum.RoleManager), h.Dashboard.GetStats)

	registerCatalogRoutes(protected, h)
	registerPartyRoutes(protected, h)
	registerPOSRoutes(protected, h, deps)
	registerCashRoutes(protected, h)
	registerTransactionRoutes(protected, h)
	registerPrinterRoutes(protected, h)
}

func registerCatalogRoutes(protected *gin.RouterGroup, h *Handlers) {
	manage := middleware.RequireRole(enum.RoleAdmin, enum.RoleManager)

	// The terminal needs catalog reads; writes are back-office only
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/:id", h.Product.Get)
		products.POST("", manage, h.Product.Create)
		products.PUT("/:id", manage, h.Product.Update)
		products.DELETE("/:id", manage, h.Product.Delete)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", h.Product.ListCategories)
		categories.POST("", manage, h.Product.CreateCategory)
		categories.PUT("/:id", manage, h.Product.UpdateCategory)
		categories.DELETE("/:id", manage, h.Product.DeleteCategory)
	}
}

func registerPartyRoutes(protected *gin.RouterGroup, h *Handlers) {
	manage := middleware.RequireRole(enum.RoleAdmin, enum.RoleManager)

	customers := protected.Group("/customers")
	{
		customers.GET("", h.Party.ListCustomers)
		customers.POST("", h.Party.CreateCustomer)
		customers.GET("/:id", h.Party.GetCustomer)
		customers.GET("/:id/aging", h.Party.CustomerAging)
		customers.PUT("/:id", h.Party.UpdateCustomer)
		customers.DELETE("/:id", manage, h.Party.DeleteCustomer)
	}

	vendors := protected.Group("/vendors")
	vendors.Use(manage)
	{
		vendors.GET("", h.Party.ListVendors)
		vendors.POST("", h.Party.CreateVendor)
		vendors.GET("/:id", h.Party.GetVendor)
		vendors.GET("/:id/aging", h.Party.VendorAging)
		vendors.PUT("/:id", h.Party.UpdateVendor)
		vendors.DELETE("/:id", h.Party.DeleteVendor)
	}
}

func registerPOSRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	pos := protected.Group("/pos")
	{
		pos.GET("/cart", h.Checkout.GetCart)
		pos.DELETE("/cart", h.Checkout.Abandon)
		pos.POST("/cart/items", h.Checkout.AddItem)
		pos.PUT("/cart/items/:product_id", h.Checkout.UpdateItem)
		pos.DELETE("/cart/items/:product_id", h.Checkout.RemoveItem)
		pos.PUT("/cart/discount", h.Checkout.SetDiscount)
		pos.PUT("/cart/payment", h.Checkout.SetPaymentMethod)
		pos.PUT("/cart/cheque", h.Checkout.SetCheque)
		pos.PUT("/cart/advance", h.Checkout.SetAdvance)
		pos.PUT("/cart/customer", h.Checkout.SetCustomer)
		pos.PUT("/cart/tendered", h.Checkout.SetTendered)
		// Checkout uses idempotency middleware so a retried commit replays
		// the original outcome instead of charging twice
		pos.POST("/checkout", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Checkout.Commit)
	}
}

func registerCashRoutes(protected *gin.RouterGroup, h *Handlers) {
	cash := protected.Group("/cash")
	{
		cash.POST("/open", h.Cash.OpenDay)
		cash.GET("/status", h.Cash.Status)
		cash.POST("/close", h.Cash.CloseDay)
		cash.GET("/history", h.Cash.History)
	}
}

func registerTransactionRoutes(protected *gin.RouterGroup, h *Handlers) {
	manage := middleware.RequireRole(enum.RoleAdmin, enum.RoleManager)

	transactions := protected.Group("/transactions")
	{
		transactions.GET("", h.Transaction.List)
		transactions.GET("/:id", h.Transaction.Get)
		transactions.POST("/expenses", manage, h.Transaction.CreateExpense)
		transactions.POST("/transfers", manage, h.Transaction.CreateTransfer)
		transactions.POST("/purchases", manage, h.Transaction.CreatePurchase)
		transactions.POST("/credit-payments", h.Transaction.CreateCreditPayment)
		transactions.POST("/loans", manage, h.Transaction.CreateLoan)
		transactions.POST("/:id/void", manage, h.Transaction.Void)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
		printerGroup.POST("/receipt", h.Printer.PrintReceipt)
	}
}
