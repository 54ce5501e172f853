package handler

import (
	"payment-facilitator/internal/adapter/http/middleware"
	"payment-facilitator/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// maxRequestBody caps inbound request bodies.
const maxRequestBody = 1 << 20

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	MerchantSvc    ports.MerchantService
	SettlementSvc  ports.SettlementService
	RateLimitStore ports.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	BaseCurrency   string
	Mode           string // gin mode; empty = release
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	mode := deps.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxRequestBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	rules := middleware.DefaultRateLimitRules()

	// rl returns the limiter for a group, or a no-op when no store is configured.
	rl := func(group string) gin.HandlerFunc {
		rule, ok := rules[group]
		if deps.RateLimitStore == nil || !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	merchantHandler := NewMerchantHandler(deps.MerchantSvc, deps.BaseCurrency)
	settlementHandler := NewSettlementHandler(deps.SettlementSvc)

	v1 := r.Group("/api/v1")

	merchants := v1.Group("/merchants")
	{
		merchants.POST("", rl("merchants"), merchantHandler.Register)
		merchants.GET("/:merchant_id", merchantHandler.GetMerchant)
		merchants.GET("/:merchant_id/statement", merchantHandler.GetStatement)
		merchants.POST("/:merchant_id/products", rl("products"), merchantHandler.AddProduct)
		merchants.POST("/:merchant_id/payouts", rl("payouts"), settlementHandler.RequestPayout)
	}

	products := v1.Group("/products")
	{
		products.GET("/:product_id", merchantHandler.GetProduct)
		products.POST("/:product_id/payments", rl("payments"), settlementHandler.CollectPayment)
	}

	return r
}
