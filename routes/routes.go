package routes

import (
	"vibedine-api/handlers"
	"vibedine-api/middleware"
	"vibedine-api/models"
	"vibedine-api/realtime"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, hub *realtime.Hub) {
	// WebSocket endpoint; staff rooms check the token during join
	r.GET("/ws", middleware.OptionalAuth(), hub.HandleWebSocket)

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)
		public.POST("/auth/admin/login", handlers.AdminLogin)

		public.GET("/menu", handlers.ListMenu)
		public.GET("/menu/categories", handlers.GetMenuCategories)
		public.GET("/menu/:id", handlers.GetMenuItem)

		public.GET("/tables/scan/:number", handlers.ScanTable)

		// Guests order and track without an account
		public.POST("/orders", middleware.OptionalAuth(), handlers.CreateOrder)
		public.GET("/orders/:id", handlers.GetOrder)
		public.POST("/orders/:id/request-waiter", handlers.RequestWaiter)
		public.POST("/orders/:id/request-bill", handlers.RequestBill)

		public.POST("/feedback", handlers.CreateFeedback)
		public.GET("/recommendations/popular", handlers.GetPopularRecommendations)
	}

	// ── Authenticated customer routes ──────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
		auth.PUT("/health-profile", handlers.UpdateHealthProfile)
		auth.GET("/recommendations", handlers.GetRecommendations)
	}

	// ── Kitchen / staff order queue ────────────────────────────────
	staff := r.Group("/api")
	staff.Use(middleware.AuthRequired(), middleware.PermissionRequired(models.PermManageOrders))
	{
		staff.GET("/orders", handlers.ListOrders)
		staff.GET("/orders/active", handlers.ListActiveOrders)
		staff.PATCH("/orders/:id/status", handlers.UpdateOrderStatus)
		staff.PATCH("/orders/:id/priority", handlers.UpdateOrderPriority)
	}

	// ── Menu management ────────────────────────────────────────────
	menu := r.Group("/api/menu")
	menu.Use(middleware.AuthRequired(), middleware.PermissionRequired(models.PermManageMenu))
	{
		menu.POST("", handlers.CreateMenuItem)
		menu.PUT("/:id", handlers.UpdateMenuItem)
		menu.PATCH("/:id/availability", handlers.SetMenuItemAvailability)
		menu.DELETE("/:id", handlers.DeleteMenuItem)
	}

	// ── Feedback review ────────────────────────────────────────────
	feedback := r.Group("/api/feedback")
	feedback.Use(middleware.AuthRequired(), middleware.PermissionRequired(models.PermViewFeedback))
	{
		feedback.GET("", handlers.ListFeedback)
		feedback.GET("/stats", handlers.FeedbackStats)
	}

	// ── Admin analytics and staff management ───────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.PermissionRequired(models.PermViewAnalytics))
	{
		admin.GET("/dashboard", handlers.Dashboard)
		admin.GET("/analytics", handlers.Analytics)
		admin.GET("/service-metrics", handlers.ServiceMetrics)
		admin.GET("/staff-performance", handlers.StaffPerformance)
		admin.GET("/staff", handlers.ListStaff)
	}

	adminOnly := r.Group("/api/admin")
	adminOnly.Use(middleware.AuthRequired(), middleware.PermissionRequired(models.PermManageStaff))
	{
		adminOnly.POST("/staff", handlers.CreateStaff)
	}
}
