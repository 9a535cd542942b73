package main

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

	"github.com/minhkhoa23/npcnpm-final-sub001/config"
	"github.com/minhkhoa23/npcnpm-final-sub001/db"
	"github.com/minhkhoa23/npcnpm-final-sub001/handlers"
	"github.com/minhkhoa23/npcnpm-final-sub001/live"
	"github.com/minhkhoa23/npcnpm-final-sub001/middleware"
	"github.com/minhkhoa23/npcnpm-final-sub001/repositories"
	"github.com/minhkhoa23/npcnpm-final-sub001/routes"
	"github.com/minhkhoa23/npcnpm-final-sub001/services"
	"github.com/minhkhoa23/npcnpm-final-sub001/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2). Без конфигурации
	// файловое хранилище отключено, сервис работает дальше.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage is not configured, file uploads disabled")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	// Инициализация репозиториев
	transactor := repositories.NewSQLTransactor(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	competitorRepo := repositories.NewPostgresCompetitorRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	newsRepo := repositories.NewPostgresNewsRepository(dbConn)
	highlightRepo := repositories.NewPostgresHighlightRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, uploader)
	registrationService := services.NewRegistrationService(transactor, tournamentRepo, competitorRepo, userRepo, wsHub)
	tournamentService := services.NewTournamentService(
		transactor,
		tournamentRepo,
		competitorRepo,
		matchRepo,
		newsRepo,
		highlightRepo,
		userRepo,
		uploader,
		logger,
	)
	matchService := services.NewMatchService(matchRepo, tournamentRepo, competitorRepo, wsHub)
	newsService := services.NewNewsService(newsRepo, tournamentRepo, uploader, wsHub)
	highlightService := services.NewHighlightService(highlightRepo, tournamentRepo, matchRepo, uploader)
	statsService := services.NewStatsService(tournamentRepo, competitorRepo, matchRepo, newsRepo)
	logger.Info("services initialized")

	// Планировщик автоматического перевода статусов турниров по датам
	go func() {
		ticker := time.NewTicker(cfg.StatusSyncPeriod)
		defer ticker.Stop()
		logger.Info("tournament status scheduler started", slog.Duration("period", cfg.StatusSyncPeriod))

		runOnce := func() {
			updated, err := tournamentService.AutoUpdateStatusesByDates(context.Background())
			if err != nil {
				logger.Error("scheduler: status update failed", slog.Any("error", err))
				return
			}
			if updated > 0 {
				logger.Info("scheduler: tournament statuses updated", slog.Int("count", updated))
			}
		}

		runOnce()
		for range ticker.C {
			runOnce()
		}
	}()

	// Инициализация обработчиков HTTP
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		User:         handlers.NewUserHandler(userService),
		Tournament:   handlers.NewTournamentHandler(tournamentService, statsService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Match:        handlers.NewMatchHandler(matchService),
		News:         handlers.NewNewsHandler(newsService),
		Highlight:    handlers.NewHighlightHandler(highlightService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, tournamentService),
	}
	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := routes.InitRoutes(h, authenticator)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
