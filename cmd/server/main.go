package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/focusaint/focusaint/internal/auth"
	"github.com/focusaint/focusaint/internal/config"
	"github.com/focusaint/focusaint/internal/database"
	"github.com/focusaint/focusaint/internal/events"
	"github.com/focusaint/focusaint/internal/habit"
	"github.com/focusaint/focusaint/internal/health"
	"github.com/focusaint/focusaint/internal/mailer"
	"github.com/focusaint/focusaint/internal/models"
	"github.com/focusaint/focusaint/internal/otp"
	"github.com/focusaint/focusaint/internal/users"
	"github.com/focusaint/focusaint/internal/worker"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	if cfg.SeedDev && cfg.Env != "production" {
		if err := database.SeedDevData(db); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}

	if cfg.TokenEncryptionKey != "" {
		if err := models.InitEncryption(cfg.TokenEncryptionKey); err != nil {
			log.Fatalf("token encryption: %v", err)
		}
	} else {
		log.Println("WARNING: TOKEN_ENCRYPTION_KEY not set. OAuth tokens will be stored unencrypted.")
	}

	auth.InitProviders(cfg)

	codes, err := otp.NewStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("otp store: %v", err)
	}

	if err := worker.InitClient(cfg.RedisURL); err != nil {
		log.Fatalf("task client: %v", err)
	}
	defer worker.CloseClient()

	m := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.EmailFrom)

	stopWorker, err := worker.Start(cfg, db, m)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}
	defer stopWorker()

	stopScheduler, err := worker.StartScheduler(cfg)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	defer stopScheduler()

	publisher, err := events.NewPublisher(cfg.RedisURL)
	if err != nil {
		log.Fatalf("event publisher: %v", err)
	}
	defer publisher.Close()

	stores := habit.NewStores(db)
	svc := habit.NewService(stores.Sessions, stores.Streaks, stores.Users, time.Now)

	router := gin.Default()
	router.Use(corsMiddleware(cfg.CORSOrigin))

	router.GET("/health", gin.WrapF(health.Handler))

	api := router.Group("/api")
	{
		api.GET("/health", gin.WrapF(health.Handler))

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", auth.HandleSignup(db, codes))
			authRoutes.POST("/login", auth.HandleLogin(db, codes, cfg.JWTSecret))
			authRoutes.POST("/verify-otp", auth.HandleVerifyOTP(db, codes, cfg.JWTSecret))
			authRoutes.POST("/resend-otp", auth.HandleResendOTP(db, codes))
			authRoutes.GET("/oauth/google", auth.HandleOAuthLogin)
			authRoutes.GET("/oauth/google/callback", auth.HandleOAuthCallback(db, cfg.JWTSecret, cfg.FrontendURL))
		}

		protected := api.Group("")
		protected.Use(auth.RequireAuth(cfg.JWTSecret))
		{
			user := protected.Group("/user")
			{
				user.GET("/profile", users.ProfileHandler(db, svc))
				user.PUT("/profile", users.UpdateProfileHandler(db))
				user.GET("/dashboard", users.DashboardHandler(db, svc))
			}

			habit.RegisterRoutes(protected.Group("/habit"), svc, publisher)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on :%s (env=%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// corsMiddleware allows the frontend origin. Preflight requests short-circuit
// with 204.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
