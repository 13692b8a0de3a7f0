package handler

import (
	"wallet-ledger/internal/adapter/http/middleware"
	redisStore "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	TransactionSvc ports.TransactionService
	LedgerSvc      ports.LedgerService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.LedgerSvc)
	wallets := v1.Group("/wallets")
	{
		wallets.POST("", rl("wallets_write"), walletHandler.Create)
		wallets.GET("", rl("reads"), walletHandler.List)
		wallets.GET("/:id", rl("reads"), walletHandler.Get)
		wallets.PATCH("/:id", rl("wallets_write"), walletHandler.UpdateLabel)
		wallets.DELETE("/:id", rl("wallets_write"), walletHandler.Deactivate)
		wallets.POST("/:id/transactions", rl("transactions_write"), walletHandler.CreateTransaction)
	}

	transactionHandler := NewTransactionHandler(deps.TransactionSvc)
	transactions := v1.Group("/transactions")
	{
		transactions.GET("", rl("reads"), transactionHandler.List)
		transactions.GET("/:txid", rl("reads"), transactionHandler.GetByTxid)
	}

	return r
}
