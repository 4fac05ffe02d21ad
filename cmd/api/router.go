package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/shared"
	"shop-backend/internal/shared/middleware"
	"shop-backend/pkg/container"
	"shop-backend/pkg/logger"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS("*"),
	)

	router.GET("/health", healthCheckHandler(c.Config.App.Version, map[string]healthCheck{
		"database": c.DB.HealthCheck,
		"redis":    c.Cache.Ping,
	}))
	router.GET("/metrics", gin.WrapH(c.MetricsHTTP))

	v1 := router.Group("/api/v1")
	auth := middleware.AuthMiddleware(c.JWTManager)

	setupCatalogRoutes(v1, c, auth)
	setupCartRoutes(v1, c, auth)
	setupCheckoutRoutes(v1, c, auth)
	setupOrderRoutes(v1, c, auth)
	setupServiceRoutes(v1, c, auth)
	setupUserRoutes(v1, c, auth)
	setupAdminRoutes(v1, c, auth)

	return router
}

func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	v1.GET("/categories", c.ProductHandler.ListCategories)

	products := v1.Group("/products")
	{
		products.GET("", c.ProductHandler.ListProducts)
		products.GET("/:id", c.ProductHandler.GetProduct)
		products.GET("/:id/reviews", c.ReviewHandler.ListForProduct)
		products.POST("/:id/reviews", auth, c.ReviewHandler.Create)
	}
}

func setupCartRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	cart := v1.Group("/cart", auth)
	{
		cart.GET("", c.CartHandler.GetCart)
		cart.PUT("", c.CartHandler.SyncCart)
		cart.DELETE("", c.CartHandler.ClearCart)
	}
}

func setupCheckoutRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	stripe := v1.Group("/stripe", auth, middleware.Idempotency(c.Cache, c.Config.Payment.IdempotencyTTL))
	{
		stripe.POST("/create-payment-intent", c.PaymentHandler.CreatePaymentIntent)
		stripe.POST("/confirm-payment", c.PaymentHandler.ConfirmPayment)
	}
}

func setupOrderRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	orders := v1.Group("/orders", auth)
	{
		orders.GET("", c.OrderHandler.ListMyOrders)
		orders.GET("/:id", c.OrderHandler.GetMyOrder)
		orders.POST("/:id/cancel", c.OrderHandler.CancelMyOrder)
	}
}

func setupServiceRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	services := v1.Group("/services", auth)
	{
		services.GET("/available-slots", c.BookingHandler.AvailableSlots)
		services.POST("", middleware.RequireRoles(shared.RoleCustomer, shared.RoleManager, shared.RoleAdmin), c.BookingHandler.Create)
		services.GET("", c.BookingHandler.ListMine)
		services.GET("/:id", c.BookingHandler.Get)
		services.PATCH("/:id", c.BookingHandler.Update)
		services.DELETE("/:id", c.BookingHandler.Cancel)
	}
}

func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	v1.GET("/users/me", auth, c.UserHandler.Me)
}

func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container, auth gin.HandlerFunc) {
	admin := v1.Group("/admin", auth, middleware.RequireRoles(shared.RoleAdmin, shared.RoleManager))
	{
		admin.GET("/products", c.ProductHandler.AdminListProducts)
		admin.GET("/products/export", c.ProductHandler.ExportProducts)
		admin.POST("/products", c.ProductHandler.CreateProduct)
		admin.PATCH("/products", c.ProductHandler.BulkUpdateProducts)
		admin.PUT("/products/:id", c.ProductHandler.UpdateProduct)
		admin.GET("/products/:id/images", c.ProductHandler.ListImages)
		admin.POST("/products/:id/images", c.ProductHandler.AddImage)
		admin.PUT("/products/:id/images/order", c.ProductHandler.ReorderImages)
		admin.PATCH("/images", c.ProductHandler.BulkUpdateImages)
		admin.DELETE("/images/:id", c.ProductHandler.DeleteImage)

		admin.GET("/orders", c.OrderHandler.AdminListOrders)
		admin.GET("/orders/:id", c.OrderHandler.AdminGetOrder)
		admin.PATCH("/orders/:id/status", c.OrderHandler.UpdateStatus)

		admin.GET("/services", c.BookingHandler.AdminList)
		admin.PATCH("/services", c.BookingHandler.BulkUpdate)

		admin.GET("/reviews", c.ReviewHandler.AdminList)
		admin.PATCH("/reviews", c.ReviewHandler.BulkSetVisibility)

		users := admin.Group("/users", middleware.RequireRoles(shared.RoleAdmin))
		{
			users.GET("", c.UserHandler.AdminList)
			users.PATCH("", c.UserHandler.BulkUpdate)
		}
	}
}

type healthCheck func(ctx context.Context) error

// healthCheckHandler reports each dependency as up or down. Failure causes are logged only.
func healthCheckHandler(version string, deps map[string]healthCheck) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		checks := gin.H{}
		status := http.StatusOK
		for name, check := range deps {
			checks[name] = "up"
			if err := check(checkCtx); err != nil {
				logger.ErrorWithFields("[HEALTH] dependency check failed", err, map[string]interface{}{
					"dependency": name,
				})
				checks[name] = "down"
				status = http.StatusServiceUnavailable
			}
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"version": version,
			"checks":  checks,
		})
	}
}
