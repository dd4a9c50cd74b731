package handler

import (
	"net/http"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers набор обработчиков сервиса
type Handlers struct {
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Auth     *AuthHandler
}

// HealthCheck проверка доступности хранилища для /health
type HealthCheck func(c *gin.Context) error

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(h Handlers, sessions *SessionManager, allowOrigins []string, health HealthCheck) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("storefront-service"))

	if len(allowOrigins) == 0 {
		allowOrigins = []string{"https://*", "http://*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", SessionHeader, logger.RequestIDHeader},
		ExposeHeaders:    []string{SessionHeader, logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "degraded",
					"service": "storefront-service",
					"error":   err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "storefront-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Каталог не зависит от сессии
	products := router.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
	}

	sessioned := router.Group("")
	sessioned.Use(sessions.SessionMiddleware())

	cart := sessioned.Group("/cart")
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PATCH("/items/:id", h.Cart.AdjustItem)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)
	}

	checkout := sessioned.Group("/checkout")
	{
		checkout.GET("", h.Checkout.GetCheckout)
		checkout.PUT("/payment-method", h.Checkout.ChangePaymentMethod)
		checkout.POST("/submit", h.Checkout.Submit)
		checkout.POST("/confirm", h.Checkout.Confirm)
		checkout.POST("/edit", h.Checkout.Edit)
	}

	auth := sessioned.Group("/auth")
	{
		auth.GET("/me", h.Auth.GetMe)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", h.Auth.Logout)
	}

	return router
}
