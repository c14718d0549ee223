package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/siteguard/backend/internal/config"
	"github.com/siteguard/backend/internal/handlers"
	"github.com/siteguard/backend/internal/middleware"
	"github.com/siteguard/backend/internal/models"
	"github.com/siteguard/backend/internal/services"
	"github.com/siteguard/backend/pkg/crypto"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	// Settings secrets are encrypted at rest with a key derived from the env
	encryptionKey := cfg.SettingsEncryptionKey
	if encryptionKey == "" {
		log.Println("WARN: SETTINGS_ENCRYPTION_KEY not set, deriving from JWT_SECRET")
		encryptionKey = cfg.JWTSecret
	}
	secrets, err := crypto.NewSecrets(encryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize settings encryption: %v", err)
	}

	// Initialize services
	smsService := services.NewSMSService()
	emailService := services.NewEmailService()
	settingsService := services.NewSettingsService(db, secrets)
	notificationService := services.NewNotificationService(db, settingsService, smsService, emailService)
	authService := services.NewAuthService(db, redisClient, cfg)
	userService := services.NewUserService(db, cfg)
	verificationService := services.NewVerificationService(db, redisClient, cfg, notificationService)
	visitorService := services.NewVisitorService(db, notificationService)
	residentService := services.NewResidentService(db)
	exportService := services.NewExportService(residentService)
	passService := services.NewPassService(cfg)

	// Create admin user if not exists
	if err := userService.CreateDefaultAdmin(); err != nil {
		log.Printf("Failed to create default admin: %v", err)
	}

	// Periodic sweep for expired verification codes
	go func() {
		ticker := time.NewTicker(cfg.VerificationCleanupPeriod)
		defer ticker.Stop()
		for range ticker.C {
			deleted, err := verificationService.CleanupExpired()
			if err != nil {
				log.Printf("Verification cleanup error: %v", err)
			} else if deleted > 0 {
				log.Printf("Verification cleanup: removed %d expired codes", deleted)
			}
		}
	}()

	// Periodic sweep for expired refresh tokens
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := authService.CleanupExpiredTokens(); err != nil {
				log.Printf("Refresh token cleanup error: %v", err)
			}
		}
	}()

	// Setup Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	visitorHandler := handlers.NewVisitorHandler(visitorService, passService)
	residentHandler := handlers.NewResidentHandler(residentService)
	settingsHandler := handlers.NewSettingsHandler(settingsService, notificationService)
	reportHandler := handlers.NewReportHandler(exportService, visitorService, residentService)
	adminHandler := handlers.NewAdminHandler(userService, visitorService, notificationService)

	// Health check outside API group
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Setup routes
	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Catch-all OPTIONS handler for CORS preflight requests
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.Auth(authService), authHandler.Logout)
		}

		// Front-desk routes
		desk := api.Group("")
		desk.Use(middleware.Auth(authService))
		{
			// Phone verification
			desk.POST("/verification/send", verificationHandler.SendCode)
			desk.POST("/verification/verify", verificationHandler.VerifyCode)

			// Visitors
			desk.POST("/visitors", visitorHandler.CheckIn)
			desk.GET("/visitors", visitorHandler.List)
			desk.GET("/visitors/active", visitorHandler.GetActive)
			desk.GET("/visitors/:id", visitorHandler.GetByID)
			desk.PUT("/visitors/:id", visitorHandler.Update)
			desk.POST("/visitors/:id/checkout", visitorHandler.CheckOut)
			desk.GET("/visitors/:id/pass.pdf", visitorHandler.PassPDF)

			// Residents
			desk.POST("/residents", residentHandler.Create)
			desk.GET("/residents", residentHandler.List)
			desk.GET("/residents/lookup", residentHandler.GetByApartment)
			desk.GET("/residents/:id", residentHandler.GetByID)
			desk.PUT("/residents/:id", residentHandler.Update)
			desk.DELETE("/residents/:id", residentHandler.Deactivate)
			desk.POST("/residents/:id/contacts", residentHandler.AddContact)
			desk.DELETE("/residents/:id/contacts/:contactId", residentHandler.RemoveContact)
			desk.POST("/residents/:id/vehicles", residentHandler.AddVehicle)
			desk.DELETE("/residents/:id/vehicles/:vehicleId", residentHandler.RemoveVehicle)

			// Reports
			desk.GET("/reports/visitors.xlsx", reportHandler.ExportVisitorsXLSX)
			desk.GET("/reports/visitors.csv", reportHandler.ExportVisitorsCSV)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(authService))
		admin.Use(middleware.AdminOnly())
		{
			// User management
			admin.GET("/users", adminHandler.GetAllUsers)
			admin.POST("/users", adminHandler.CreateUser)
			admin.PUT("/users/:id/active", adminHandler.UpdateUserActive)
			admin.PUT("/users/:id/password", adminHandler.ResetUserPassword)

			// Provider settings
			admin.GET("/settings/sms", settingsHandler.GetSmsSettings)
			admin.PUT("/settings/sms", settingsHandler.UpsertSmsSettings)
			admin.POST("/settings/sms/test", settingsHandler.TestSms)
			admin.GET("/settings/mail", settingsHandler.GetMailSettings)
			admin.PUT("/settings/mail", settingsHandler.UpsertMailSettings)
			admin.POST("/settings/mail/test", settingsHandler.TestMail)

			// Audit trails
			admin.GET("/logs/visitors", adminHandler.GetVisitorLogs)
			admin.GET("/logs/notifications", adminHandler.GetNotificationLogs)

			// Resident directory export/import
			admin.GET("/reports/residents.xlsx", reportHandler.ExportResidentsXLSX)
			admin.GET("/reports/residents/template.xlsx", reportHandler.ResidentImportTemplate)
			admin.POST("/reports/residents/import", reportHandler.ImportResidents)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
