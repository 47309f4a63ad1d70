package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"velora_back_end/internal/handlers"
	adminhandlers "velora_back_end/internal/handlers/admin"
	"velora_back_end/internal/handlers/content"
	"velora_back_end/internal/handlers/order"
	"velora_back_end/internal/handlers/payment"
	"velora_back_end/internal/handlers/product"
	"velora_back_end/internal/middleware"
	"velora_back_end/internal/models"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(corsMiddleware())

	api := r.Group("/api")

	// ===== Auth =====
	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", middleware.LoginRateLimit(), handlers.Login)
		auth.GET("/me", middleware.AuthRequired(), handlers.Me)
		auth.GET("/:provider", handlers.BeginAuth)
		auth.GET("/:provider/callback", handlers.CallbackAuth)
	}

	// ===== Catalogue public =====
	api.GET("/products", product.GetAllProducts)
	api.GET("/products/search", product.SearchProducts)
	api.GET("/products/slug/:slug", product.GetProductBySlug)
	api.GET("/products/:id", product.GetProductByID)
	api.GET("/products/:id/variations", product.GetVariations)
	api.GET("/categories", product.GetAllCategories)
	api.GET("/categories/:slug", product.GetCategoryBySlug)
	api.GET("/categories/:slug/products", product.GetProductsByCategory)

	// ===== Contenu public =====
	api.GET("/pages/:slug", optionalAuth(), content.GetPageBySlug)
	api.GET("/menus/:location", content.GetMenuByLocation)
	api.GET("/settings", content.GetAllSettings)
	api.GET("/settings/:key", content.GetSetting)

	// ===== Commandes (authentifié) =====
	orders := api.Group("/orders", middleware.AuthRequired())
	{
		orders.POST("", order.CreateOrder)
		orders.GET("", order.ListOrders)
		orders.GET("/:id", order.GetOrderByID)
		orders.PUT("/:id/cancel", order.CancelOrder)
		orders.PUT("/:id/status", middleware.RequireRole(models.RoleAdmin, models.RoleEditor), order.UpdateOrderStatus)
		orders.POST("/:id/payment-intent", payment.CreatePaymentIntent)
	}

	// ===== Paiement =====
	api.POST("/payments/webhook", payment.StripeWebhook)

	// ===== Back-office (admin/editor) =====
	staff := api.Group("/admin", middleware.AuthRequired(),
		middleware.RequireRole(models.RoleAdmin, models.RoleEditor))
	{
		staff.POST("/products", product.CreateProduct)
		staff.PUT("/products/:id", product.UpdateProduct)
		staff.POST("/products/:id/variations", product.CreateVariation)
		staff.POST("/products/:id/images", product.UploadProductImage)
		staff.DELETE("/products/:id/images", product.DeleteProductImage)
		staff.PUT("/variations/:id", product.UpdateVariation)
		staff.PUT("/variations/:id/stock", product.UpdateVariationStock)

		staff.POST("/categories", product.CreateCategory)
		staff.PUT("/categories/:id", product.UpdateCategory)

		staff.GET("/pages", content.ListPages)
		staff.POST("/pages", content.CreatePage)
		staff.PUT("/pages/:id", content.UpdatePage)
		staff.POST("/menus", content.CreateMenu)
		staff.PUT("/menus/:location", content.UpdateMenu)
	}

	// ===== Back-office (admin seulement) =====
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.DELETE("/products/:id", product.DeleteProduct)
		admin.DELETE("/categories/:id", product.DeleteCategory)
		admin.DELETE("/pages/:id", content.DeletePage)
		admin.DELETE("/menus/:location", content.DeleteMenu)
		admin.PUT("/settings/:key", content.UpsertSetting)
		admin.DELETE("/settings/:key", content.DeleteSetting)

		admin.GET("/inventory/movements", product.GetStockMovements)
		admin.GET("/inventory/alerts", product.GetLowStockAlerts)
		admin.GET("/inventory/alerts/live", product.StockAlertsWebSocket)
		admin.PUT("/inventory/alerts/:id/resolve", product.ResolveStockAlert)

		admin.GET("/audit-logs", adminhandlers.GetAuditLogs)
		admin.GET("/audit-logs/:resource/:resource_id", adminhandlers.GetAuditLogsByResource)
	}
}

// optionalAuth renseigne le contexte si un JWT valide est fourni, sans
// bloquer les requêtes anonymes (brouillons visibles par le staff seulement).
func optionalAuth() gin.HandlerFunc {
	authRequired := middleware.AuthRequired()
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authRequired(c)
	}
}

func corsMiddleware() gin.HandlerFunc {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		origins = append(origins, strings.Split(extra, ",")...)
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
