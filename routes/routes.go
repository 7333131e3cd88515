package routes

import (
	"time"

	"shopfront-backend/handlers"
	"shopfront-backend/middleware"
	"shopfront-backend/tasks"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, dispatcher *tasks.Dispatcher) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	inventoryHandler := &handlers.InventoryHandler{DB: db, Dispatcher: dispatcher}
	couponHandler := &handlers.CouponHandler{DB: db}
	promotionTypeHandler := &handlers.PromotionTypeHandler{DB: db}
	promotionHandler := &handlers.PromotionHandler{DB: db, Dispatcher: dispatcher}
	taskHandler := &handlers.TaskHandler{Dispatcher: dispatcher}

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		// Auth routes
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", loginLimiter.Middleware(), authHandler.Login)

		// Public catalog routes
		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/inventory", inventoryHandler.GetInventory)
		api.GET("/inventory/:id", inventoryHandler.GetInventoryItem)

		// Public promotion routes (active, in-window promotions only)
		api.GET("/promotions", promotionHandler.GetPromotions)
		api.GET("/promotions/:id", promotionHandler.GetPromotion)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Category management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		// Inventory management
		admin.POST("/inventory", inventoryHandler.CreateInventoryItem)
		admin.PUT("/inventory/:id", inventoryHandler.UpdateInventoryItem)
		admin.DELETE("/inventory/:id", inventoryHandler.DeleteInventoryItem)

		// Coupon management
		admin.GET("/coupons", couponHandler.GetCoupons)
		admin.GET("/coupons/:id", couponHandler.GetCoupon)
		admin.POST("/coupons", couponHandler.CreateCoupon)
		admin.PUT("/coupons/:id", couponHandler.UpdateCoupon)
		admin.DELETE("/coupons/:id", couponHandler.DeleteCoupon)

		// Promotion type management
		admin.GET("/promotion-types", promotionTypeHandler.GetPromotionTypes)
		admin.POST("/promotion-types", promotionTypeHandler.CreatePromotionType)
		admin.DELETE("/promotion-types/:id", promotionTypeHandler.DeletePromotionType)

		// Promotion management
		admin.GET("/promotions", promotionHandler.GetAllPromotions)
		admin.POST("/promotions", promotionHandler.CreatePromotion)
		admin.PUT("/promotions/:id", promotionHandler.UpdatePromotion)
		admin.DELETE("/promotions/:id", promotionHandler.DeletePromotion)
		admin.POST("/promotions/:id/products", promotionHandler.AttachProduct)
		admin.DELETE("/promotions/:id/products/:productId", promotionHandler.DetachProduct)

		// Background task management
		admin.POST("/tasks/sweep", taskHandler.TriggerSweep)
		admin.POST("/tasks/recompute", taskHandler.TriggerRecompute)
		admin.GET("/tasks/jobs/:id", taskHandler.GetJobStatus)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
