package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"instagram-agent/internal/audit"
	"instagram-agent/internal/handler"
	"instagram-agent/internal/instagram"
	"instagram-agent/internal/middleware"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
	"instagram-agent/internal/tenant"
	"instagram-agent/internal/webhook"
	"instagram-agent/pkg/config"
	"instagram-agent/pkg/database"
	"instagram-agent/pkg/jwtutil"
	"instagram-agent/pkg/logger"
	"instagram-agent/prometheus"
)

func main() {
	// Load configuration
	conf, err := config.Load("instagram-agent")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize database connection
	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	// Run migrations
	if err := database.MigrateModels(db,
		&model.Tenant{},
		&model.APIKey{},
		&model.Message{},
		&model.WebhookEvent{},
	); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// Core components
	directory := tenant.NewDirectory(db, log)
	limiter := quota.NewLimiter(db, log)
	auditLog := audit.NewLog(db, log)
	apiFactory := instagram.NewFactory(conf.Graph.BaseURL, &http.Client{Timeout: conf.Graph.Timeout}, log)
	router := webhook.NewRouter(limiter, auditLog, apiFactory, log)

	// HTTP handlers
	webhookHandler := handler.NewWebhookHandler(directory, router, auditLog)
	tenantHandler := handler.NewTenantHandler(directory)
	sendHandler := handler.NewSendHandler(limiter, auditLog, apiFactory)
	healthHandler := handler.NewHealthHandler(directory)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(prometheus.Handler()))

	// Public routes
	e.GET("/", healthHandler.Home)
	e.GET("/api/health", healthHandler.Health)

	// Per-tenant webhook endpoints
	e.GET("/webhook/:verify_token", webhookHandler.Verify)
	e.POST("/webhook/:verify_token", webhookHandler.Receive)

	// Tenant management API. Open unless an admin signing key is
	// configured.
	clients := e.Group("/api/clients")
	if conf.JWT.SigningKey != "" {
		jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
			SigningKey:      conf.JWT.SigningKey,
			ExpirationHours: conf.JWT.ExpirationHours,
		})
		clients.Use(middleware.AdminAuthMiddleware(jwt))
	}
	clients.POST("", tenantHandler.Create)
	clients.GET("", tenantHandler.List)
	clients.GET("/:id", tenantHandler.Get)
	clients.PUT("/:id", tenantHandler.Update)
	clients.DELETE("/:id", tenantHandler.Delete)
	clients.POST("/:id/activate", tenantHandler.Activate)
	clients.GET("/:id/stats", tenantHandler.Stats)

	// Authenticated send API
	sends := e.Group("/api")
	sends.Use(middleware.APIKeyAuthMiddleware(directory))
	sends.POST("/send-message", sendHandler.SendMessage)

	// Start server
	log.Info("Starting instagram-agent on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
