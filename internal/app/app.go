package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hellodube-gateway/internal/config"
	"hellodube-gateway/internal/database"
	"hellodube-gateway/internal/docs"
	"hellodube-gateway/internal/handler"
	"hellodube-gateway/internal/middleware"
	"hellodube-gateway/internal/repository"
	"hellodube-gateway/internal/router"
	"hellodube-gateway/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.Client
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// The database client does not dial here: the first request that needs
	// the store establishes the pool and runs migrations.
	db := database.NewClient(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	tokenService := service.NewTokenService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authService := service.NewAuthService(tokenService, userRepo, sessionRepo)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	library := docs.NewLibrary(cfg.OpenAPIMasterFile)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, tokenService),
		Program: handler.NewProgramHandler(),
		Docs:    handler.NewDocsHandler(library, tokenService),
		Test:    handler.NewTestHandler(),
		Health:  handler.NewHealthHandler(db),
	})

	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	janitor := service.NewJanitor(sessionRepo, db.Connected)
	go janitor.Run(janitorCtx, cfg.SessionSweepInterval)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			janitorCancel,
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
