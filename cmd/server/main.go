package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/taskflow/backend/internal/auth"
	"github.com/taskflow/backend/internal/cache"
	"github.com/taskflow/backend/internal/config"
	"github.com/taskflow/backend/internal/database"
	"github.com/taskflow/backend/internal/handlers"
	"github.com/taskflow/backend/internal/middleware"
	"github.com/taskflow/backend/internal/monitoring"
	"github.com/taskflow/backend/internal/services"
	"github.com/taskflow/backend/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hasher := auth.NewHasher(cfg.Auth.PasswordScheme)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userService := services.NewUserService(hasher)
	projectService := services.NewProjectService()
	boardService := services.NewBoardService()

	var taskService services.TaskService = services.NewTaskService()

	// Redis is optional: without it the API runs uncached and the
	// reminder worker stays off.
	var redisCache *cache.RedisCache
	var reminderWorker *worker.Worker
	var reminderScanner *worker.ReminderScanner

	candidate := cache.NewRedisCache(cfg.Redis, cfg.GetRedisAddr())
	if err := candidate.Health(); err != nil {
		logger.Warn("redis unavailable, running without cache and worker",
			slog.String("error", err.Error()))
		candidate.Close()
	} else {
		redisCache = candidate
		taskService = services.NewCachedTaskService(taskService, redisCache)

		if cfg.Worker.Enabled {
			reminderWorker = worker.NewWorker(redisCache.Client(), cfg.Worker.Queues, logger)
			reminderWorker.RegisterHandler(worker.JobTypeTaskReminder, worker.LogReminderHandler(logger))
			reminderWorker.Start(cfg.Worker.Concurrency)

			queue := worker.NewJobQueue(redisCache.Client())
			reminderScanner = worker.NewReminderScanner(db, queue, cfg.Worker.ScanInterval, logger)
			reminderScanner.Start()
		}
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit)
	}

	metrics := monitoring.NewMetrics()

	router := handlers.NewRouter(cfg, handlers.Dependencies{
		DB:          db,
		Tokens:      tokens,
		Users:       userService,
		Projects:    projectService,
		Boards:      boardService,
		Tasks:       taskService,
		Cache:       redisCache,
		Metrics:     metrics,
		RateLimiter: rateLimiter,
	})

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server",
			slog.String("addr", httpServer.Addr),
			slog.String("environment", cfg.Server.Environment))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down server", slog.String("error", err.Error()))
	}

	if reminderScanner != nil {
		reminderScanner.Stop()
	}
	if reminderWorker != nil {
		reminderWorker.Stop()
	}
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if redisCache != nil {
		redisCache.Close()
	}

	logger.Info("server stopped")
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel}))
}
