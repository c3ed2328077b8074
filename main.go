package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"companion-lite/config"
	"companion-lite/internal/admin"
	"companion-lite/internal/ai"
	"companion-lite/internal/auth"
	"companion-lite/internal/chat"
	"companion-lite/internal/quota"
	"companion-lite/internal/ratelimit"
	"companion-lite/internal/user"

	"github.com/gin-gonic/gin"
)

func main() {
	// Determine config path
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		execPath, _ := os.Executable()
		configPath = filepath.Join(filepath.Dir(execPath), "config.yaml")
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Warning: Could not load config: %v, using defaults", err)
		cfg = config.DefaultConfig()
	}

	// Initialize storage
	dbPath := cfg.Storage.DBPath
	if !filepath.IsAbs(dbPath) {
		execPath, _ := os.Executable()
		dbPath = filepath.Join(filepath.Dir(execPath), dbPath)
	}

	storage, err := user.NewStorage(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer storage.Close()

	// Initialize components
	chatStore := chat.NewStore(storage.DB())
	resetter := quota.NewResetter(storage)
	tracker := quota.NewTracker(storage.DB())
	aiClient := ai.NewClient(cfg)
	chatSvc := chat.NewService(storage, chatStore, resetter, aiClient, cfg)

	authHandler := auth.NewHandler(auth.NewService(storage, cfg))
	chatHandler := chat.NewHandler(chatSvc, cfg.Chat.HistoryLimit)
	adminHandler := admin.NewHandler(storage, tracker)

	// Basic abuse protection
	globalLimiter := ratelimit.NewLimiter(200, 15*time.Minute)
	chatLimiter := ratelimit.NewLimiter(25, time.Minute)

	// Setup Gin
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", cfg.Server.ClientOrigin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.Use(globalLimiter.Middleware())

	// Health check
	r.GET("/health", adminHandler.Health)

	// Auth
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/google", authHandler.Google)
	}

	authenticated := auth.Middleware(storage, cfg)

	// Chat
	chatGroup := r.Group("/api/chat", authenticated)
	{
		chatGroup.GET("/history", chatHandler.History)
		chatGroup.POST("", chatLimiter.Middleware(), chatHandler.Send)
	}

	// Admin
	adminGroup := r.Group("/api/admin", authenticated, auth.AdminOnly())
	{
		adminGroup.GET("/overview", adminHandler.Overview)
		adminGroup.GET("/usage", adminHandler.Usage)
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.PATCH("/users/:id/block", adminHandler.SetBlocked)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Companion Lite starting on http://%s", addr)
	log.Printf("Chat API: http://%s/api/chat", addr)
	log.Printf("Daily limit: %d messages, context window: %d turns", cfg.Chat.DailyLimit, cfg.Chat.ContextWindow)

	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
