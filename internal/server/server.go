// Package server assembles the HTTP router shared by cmd/api and the flow tests.
package server

import (
	"net/http"

	"tesoro/internal/config"
	"tesoro/internal/handlers"
	"tesoro/internal/middleware"
	"tesoro/internal/services"
	"tesoro/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tesoro/internal/docs" // Import swagger docs
)

// Services bundles the business services the router exposes.
type Services struct {
	User        services.UserServicer
	Auth        services.AuthServicer
	Account     services.AccountServicer
	Category    services.CategoryServicer
	Transaction services.TransactionServicer
	Budget      services.BudgetServicer
	Debt        services.DebtServicer
	Goal        services.GoalServicer
	Audit       services.AuditServicer
}

// Deps holds everything New needs to build the router.
type Deps struct {
	Config   *config.Config
	Services Services
	Tokens   *middleware.TokenManager
}

// New builds the gin engine with middleware and all /api/v1 routes.
func New(deps Deps) *gin.Engine {
	cfg := deps.Config
	svc := deps.Services

	validator.Register()

	authHandler := handlers.NewAuthHandler(svc.User, svc.Auth, deps.Tokens, svc.Audit, handlers.CookieOptions{
		Secure: cfg.IsProduction(),
		MaxAge: deps.Tokens.TTL(),
	})
	adminHandler := handlers.NewAdminHandler(svc.User, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.Account, svc.Audit)
	categoryHandler := handlers.NewCategoryHandler(svc.Category, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transaction, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budget, svc.Audit)
	debtHandler := handlers.NewDebtHandler(svc.Debt, svc.Audit)
	goalHandler := handlers.NewGoalHandler(svc.Goal, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors(cfg.CORSOrigin))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	requireSession := deps.Tokens.AuthMiddleware()

	// Auth routes, rate limited per client ip
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	auth := v1.Group("/auth")
	auth.Use(limiter.Middleware())
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/activate/:token", authHandler.Activate)
	auth.POST("/logout", requireSession, authHandler.Logout)
	auth.GET("/verify", requireSession, authHandler.Verify)

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware(cfg.AdminAPIKey))
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/users/:id", adminHandler.GetUser)
	admin.PATCH("/users/:id/status", adminHandler.ChangeStatus)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(requireSession)

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/balance", accountHandler.GetTotalBalance)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.GET("/stats", categoryHandler.GetCategoryStats)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/summary", transactionHandler.GetSummary)
	transactions.GET("/by-category", transactionHandler.GetByCategory)
	transactions.GET("/recurring", transactionHandler.GetRecurringTransactions)
	transactions.GET("/report/:year/:month", transactionHandler.GetMonthlyReport)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.GET("/summary", budgetHandler.GetBudgetSummary)
	budgets.GET("/:id", budgetHandler.GetBudgetByID)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	debts := protected.Group("/debts")
	debts.POST("", debtHandler.CreateDebt)
	debts.GET("", debtHandler.GetUserDebts)
	debts.GET("/summary", debtHandler.GetDebtSummary)
	debts.GET("/:id", debtHandler.GetDebtByID)
	debts.PUT("/:id", debtHandler.UpdateDebt)
	debts.DELETE("/:id", debtHandler.DeleteDebt)
	debts.POST("/:id/payment", debtHandler.MakePayment)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetUserGoals)
	goals.GET("/summary", goalHandler.GetGoalSummary)
	goals.GET("/:id", goalHandler.GetGoalByID)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.POST("/:id/add-funds", goalHandler.AddFunds)
	goals.POST("/:id/withdraw-funds", goalHandler.WithdrawFunds)

	return router
}

// cors allows the configured frontend origin and answers preflight requests.
func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
