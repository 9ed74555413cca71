package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/fieldwork/jobboard/internal/cache"
	"github.com/fieldwork/jobboard/internal/config"
	"github.com/fieldwork/jobboard/internal/feed"
	"github.com/fieldwork/jobboard/internal/handler"
	"github.com/fieldwork/jobboard/internal/repository"
	"github.com/fieldwork/jobboard/internal/service"
	"github.com/fieldwork/jobboard/pkg/expo"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	snapshots, err := cache.Open(cfg.CachePath, cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("open snapshot cache: %w", err)
	}
	defer snapshots.Close()

	userRepo := repository.NewUserRepository(db)
	jobRepo := repository.NewJobRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	pushClient := expo.NewClient(expo.Config{
		BaseURL:     cfg.ExpoPushURL,
		AccessToken: cfg.ExpoAccessToken,
	})

	dispatcher := service.NewDispatcher(tokenRepo, pushClient, slog.Default())
	lifecycle := service.NewLifecycleService(jobRepo, dispatcher, slog.Default())

	authSvc := service.NewAuthService(userRepo, tokenRepo, service.AuthConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		JWTSecret:          cfg.JWTSecret,
		FrontendURL:        cfg.FrontendURL,
	})

	ctx := context.Background()

	waiter, err := feed.NewPgWaiter(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("start job feed listener: %w", err)
	}
	jobFeed := feed.Listen(ctx, jobRepo, waiter, slog.Default())

	authHandler := handler.NewAuthHandler(authSvc, snapshots)
	jobHandler := handler.NewJobHandler(lifecycle, snapshots)
	tokenHandler := handler.NewTokenHandler(tokenRepo)
	streamHandler := handler.NewStreamHandler(jobFeed, snapshots)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return handler.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)
	auth.POST("/refresh", authHandler.Refresh)

	protected := api.Group("", handler.JWTAuth(authSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/logout", authHandler.Logout)

	protected.GET("/jobs/open", jobHandler.ListOpen)
	protected.GET("/jobs/open/stream", streamHandler.OpenJobs)
	protected.GET("/jobs/mine", jobHandler.ListMine)
	protected.GET("/jobs/mine/stream", streamHandler.UserJobs)
	protected.POST("/jobs", jobHandler.Create)
	protected.GET("/jobs/:id", jobHandler.Get)
	protected.POST("/jobs/:id/accept", jobHandler.Accept)
	protected.POST("/jobs/:id/onsite", jobHandler.MarkOnSite)
	protected.POST("/jobs/:id/complete", jobHandler.Complete)

	protected.PUT("/notifications/token", tokenHandler.Register)
	protected.DELETE("/notifications/token", tokenHandler.Deregister)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := jobFeed.Close(shutdownCtx); err != nil {
		slog.Warn("job feed shutdown", "error", err)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
