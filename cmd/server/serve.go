package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/EgehanKilicarslan/library-api/internal/api"
	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/handler"
	"github.com/EgehanKilicarslan/library-api/internal/logger"
	"github.com/EgehanKilicarslan/library-api/internal/mail"
	"github.com/EgehanKilicarslan/library-api/internal/middleware"
	"github.com/EgehanKilicarslan/library-api/internal/worker"
)

const (
	shutdownTimeout     = 10 * time.Second
	resetCodePurgeEvery = time.Hour
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// 1. Config
	cfg := config.LoadConfig()

	// 2. Logger
	appLogger := logger.New(cfg)

	appLogger.Info("🚀 [Go] Starting Library API...",
		"environment", cfg.AppEnv,
		"port", cfg.ApiServicePort,
	)

	// 3. Connect to Database (applies migrations)
	db, err := database.Connect(cfg, appLogger)
	if err != nil {
		appLogger.Error("❌ Failed to connect to database", "error", err)
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	defer sqlDB.Close()

	// 4. Initialize Repositories
	userRepo := repository.NewUserRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)
	bookRepo := repository.NewBookRepository(db)
	borrowingRepo := repository.NewBorrowingRepository(db)

	// 5. Initialize Redis and the Rate Limiter
	healthChecks := map[string]handler.HealthCheck{}
	var rateLimiter middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Warn("⚠️ Failed to connect to Redis, using no-op rate limiter", "error", err)
		rateLimiter = middleware.NewNoOpRateLimiter(appLogger)
	} else {
		defer redisClient.Close()
		rateLimiter = middleware.NewRateLimiter(redisClient, cfg, appLogger)
		healthChecks["redis"] = func(ctx context.Context) error {
			return database.PingRedis(ctx, redisClient)
		}
	}

	// 6. Background workers and mail
	pool := worker.NewPool(appLogger)
	mailer := mail.New(cfg, appLogger)

	err = pool.Schedule("purge-reset-codes", resetCodePurgeEvery, func(ctx context.Context) error {
		purged, err := resetRepo.DeleteExpired(time.Now().UTC())
		if err != nil {
			return err
		}
		if purged > 0 {
			appLogger.Info("🧹 [Worker] Purged expired reset codes", "count", purged)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, resetRepo, mailer, pool, cfg, appLogger)
	userService := service.NewUserService(userRepo, cfg, appLogger)
	bookService := service.NewBookService(bookRepo, appLogger)
	borrowingService := service.NewBorrowingService(borrowingRepo, bookRepo, userRepo, cfg, appLogger)

	// 8. Initialize Handlers, Middleware and Router
	handlers := api.Handlers{
		Auth:      handler.NewAuthHandler(authService, appLogger),
		Book:      handler.NewBookHandler(bookService, appLogger),
		User:      handler.NewUserHandler(userService, appLogger),
		Borrowing: handler.NewBorrowingHandler(borrowingService, appLogger),
		Health:    handler.NewHealthHandler(sqlDB, healthChecks, appLogger),
	}
	authMiddleware := middleware.NewAuthMiddleware(authService, appLogger)

	r := api.SetupRouter(cfg, appLogger, handlers, authMiddleware, rateLimiter)

	// 9. Start HTTP Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ApiServicePort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("🌍 [Go] HTTP Server running on port...", "port", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Error("❌ HTTP Server failed to start", "error", err)
			pool.Shutdown(shutdownTimeout)
			return err
		}
	case <-ctx.Done():
		appLogger.Info("🛑 [Go] Shutdown signal received")
	}

	// 10. Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("❌ HTTP Server shutdown failed", "error", err)
	}
	pool.Shutdown(shutdownTimeout)

	appLogger.Info("👋 [Go] Server stopped")
	return nil
}
