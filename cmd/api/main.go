package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/aischeduler/scheduler-backend/internal/api/handlers"
	"github.com/aischeduler/scheduler-backend/internal/api/middleware"
	"github.com/aischeduler/scheduler-backend/internal/calendar"
	"github.com/aischeduler/scheduler-backend/internal/config"
	"github.com/aischeduler/scheduler-backend/internal/cron"
	"github.com/aischeduler/scheduler-backend/internal/db"
	"github.com/aischeduler/scheduler-backend/internal/email"
	"github.com/aischeduler/scheduler-backend/internal/notification"
	"github.com/aischeduler/scheduler-backend/internal/repository"
	"github.com/aischeduler/scheduler-backend/internal/seed"
	"github.com/aischeduler/scheduler-backend/internal/service"
	"github.com/aischeduler/scheduler-backend/internal/socket"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Run database migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "internal/db/migrations"
	}
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Connect to PostgreSQL
	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer postgres.Close()

	// Redis is optional; without it variant assignment falls back to the
	// event table alone
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, continuing without cache: %v", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
		}
	}

	repos := repository.NewRepositories(postgres.Pool)

	// WebSocket hub
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// Email service
	emailSvc := email.NewService(&email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		UseTLS:   cfg.SMTPUseTLS,
	})

	// Notification service with WebSocket push
	notifSvc := notification.NewService(repos.NotificationRepo)
	notifSvc.SetBroadcaster(broadcaster)

	// Calendar provider: live Google Calendar when connected, synthetic
	// otherwise
	calendarProvider := calendar.NewProvider(repos.CredentialRepo, handlers.OAuthConfig(cfg), nil)

	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Calendar:    calendarProvider,
		NotifSvc:    notifSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Redis:       redisDB,
	})

	// Seed development fixtures
	if cfg.Environment == "development" {
		if err := seed.Run(context.Background(), repos); err != nil {
			log.Printf("⚠️  Seeding failed: %v", err)
		}
	}

	h := handlers.NewHandlers(cfg, services, calendarProvider, repos.CredentialRepo)
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)

	// Scheduled jobs
	scheduler := cron.NewScheduler(repos.MeetingRepo, repos.NotificationRepo, repos.UserRepo, notifSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	router := setupRouter(cfg, services, h, wsHandler, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

func setupRouter(cfg *config.Config, services *service.Services, h *handlers.Handlers, wsHandler *socket.Handler, hub *socket.Hub) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Timezone"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.Timezone(cfg.DefaultTimezone))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"clients": hub.GetConnectedClientsCount(),
		})
	})

	// WebSocket endpoint (token via query param)
	router.GET("/ws", wsHandler.HandleWebSocket)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/me", middleware.AuthRequired(services.Auth), h.Auth.Me)
		}

		// Homepage experiment endpoints are public
		experiment := api.Group("/experiment")
		{
			experiment.GET("/variant", h.AbTest.Variant)
			experiment.POST("/click", h.AbTest.Click)
			experiment.GET("/stats", h.AbTest.Stats)
		}

		// OAuth callback cannot carry a bearer token; identity rides in the
		// signed state parameter
		api.GET("/google/oauth2/callback", h.Google.Callback)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(services.Auth))
		{
			meetings := protected.Group("/meetings")
			{
				meetings.POST("", h.Meeting.Create)
				meetings.GET("", h.Meeting.List)
				meetings.GET("/:id", h.Meeting.Get)
				meetings.DELETE("/:id", h.Meeting.Delete)
				meetings.POST("/:id/options", h.Meeting.AddTimeOption)
				meetings.POST("/:id/options/:optionId/select", h.Meeting.SelectTime)
				meetings.GET("/:id/availability", h.Meeting.Availability)
			}

			google := protected.Group("/google")
			{
				google.GET("/connect", h.Google.Connect)
				google.GET("/status", h.Google.Status)
				google.DELETE("/disconnect", h.Google.Disconnect)
				google.GET("/freebusy", h.Google.FreeBusy)
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.Count)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.DELETE("/:id", h.Notification.Delete)
			}
		}
	}

	return router
}
