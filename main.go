package main

import (
	"log"
	"net/http"
	"os"

	"vibedine-api/config"
	"vibedine-api/handlers"
	"vibedine-api/jobs"
	"vibedine-api/realtime"
	"vibedine-api/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database and seed tables + admin account
	config.InitDB()
	config.Seed()

	// Realtime fan-out hub for table/kitchen/admin rooms
	hub := realtime.NewHub()
	go hub.Run()
	handlers.Hub = hub

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "VibeDine Restaurant Ordering API",
			"version": "1.0.0",
		})
	})

	// Register all routes
	routes.SetupRoutes(r, hub)

	// Overdue order watcher nudges the kitchen display
	watcher := jobs.NewOverdueWatcher(hub)
	if err := watcher.Start(); err != nil {
		log.Fatal("Failed to start overdue watcher:", err)
	}
	defer watcher.Stop()

	// Start server
	port := config.GetEnv("PORT", "5001")
	log.Printf("Server running on http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
