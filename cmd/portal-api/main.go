package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/auth"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/config"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/notifications"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/notifications/websocket"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/pharmacies"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/reasons"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/reports"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/pkg/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, relying on environment")
	}

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Security.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	// Connect to database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName))
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		if cfg.Database.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		}
		if cfg.Database.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		}
		if cfg.Database.MaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
		}
	}

	if err := db.AutoMigrate(
		&auth.User{},
		&reasons.Reason{},
		&pharmacies.Pharmacy{},
		&accreditation.AccreditationRecord{},
		&accreditation.AccreditationTransition{},
	); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := reasons.Seed(db); err != nil {
		logger.Fatal("Failed to seed status reasons", zap.Error(err))
	}

	// WebSocket notifications
	wsManager := websocket.NewManager(logger)
	defer wsManager.Stop()
	notificationService := notifications.NewService(wsManager, logger)
	notificationHandler := notifications.NewHandler(wsManager)

	// Report archive storage, optional
	var archive storage.S3Client
	if cfg.Reports.ArchiveBucket != "" {
		archive, err = storage.NewS3Client(context.Background())
		if err != nil {
			logger.Warn("Report archiving disabled, S3 client unavailable", zap.Error(err))
			archive = nil
		}
	}

	// Initialize modules
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	authHandler := auth.NewHandler(authService)

	reasonRepo := reasons.NewRepository(db)
	reasonService := reasons.NewService(reasonRepo)
	reasonLookup := reasons.NewLookup(reasonRepo)
	reasonHandler := reasons.NewHandler(reasonService)

	accreditationRepo := accreditation.NewRepository(db)
	accreditationService := accreditation.NewService(accreditationRepo, reasonLookup, notificationService, logger)
	accreditationHandler := accreditation.NewHandler(accreditationService)

	pharmacyRepo := pharmacies.NewRepository(db)
	pharmacyService := pharmacies.NewService(pharmacyRepo, accreditationService, logger)
	pharmacyHandler := pharmacies.NewHandler(pharmacyService)

	reportService := reports.NewService(
		accreditationService, pharmacyService, reasonLookup,
		archive, cfg.Reports.ArchiveBucket, logger)
	reportHandler := reports.NewHandler(reportService)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	auth.RegisterRoutes(router, authHandler)

	api := router.Group("/api/v1")
	api.Use(auth.RequireAuth(authService))
	{
		pharmacyHandler.RegisterRoutes(api)
		accreditationHandler.RegisterRoutes(api)
		reasonHandler.RegisterRoutes(api)
		reportHandler.RegisterRoutes(api)
		notificationHandler.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
