package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BuzzLyutic/task-tracker/internal/auth"
	"github.com/BuzzLyutic/task-tracker/internal/cache"
	"github.com/BuzzLyutic/task-tracker/internal/config"
	"github.com/BuzzLyutic/task-tracker/internal/events"
	"github.com/BuzzLyutic/task-tracker/internal/handler"
	"github.com/BuzzLyutic/task-tracker/internal/metrics"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func serve(cfg config.Config) error {
	// Подключаем логгер
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключаем БД
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		return err
	}
	logger.Info("Successfully connected to the Database!")

	var opts []service.Option

	if rdb := connectRedis(ctx, cfg, logger); rdb != nil {
		defer rdb.Close()
		opts = append(opts, service.WithCache(cache.NewTaskCache(rdb, cfg.CacheTTL, logger)))
	}

	if cfg.AMQPURL != "" {
		publisher, err := events.DialAMQP(cfg.AMQPURL, cfg.EventQueue)
		if err != nil {
			return err
		}
		defer publisher.Close()

		workerPool := worker.NewPool(publisher, logger, cfg.EventWorkers, cfg.EventBuffer)
		workerPool.Start(context.Background())
		defer workerPool.Stop()
		opts = append(opts, service.WithEvents(workerPool))
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(repo.NewUserRepo(pool), tokens, cfg.BcryptCost)
	taskService := service.NewTaskService(repo.NewTaskRepo(pool), opts...)

	r := handler.NewRouter(
		handler.NewAuthHandler(authService, logger),
		handler.NewTaskHandler(taskService, logger),
		tokens,
		logger,
		metrics.New(),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server stopped successfully!")
	return nil
}

// connectRedis возвращает nil, если кэш выключен или Redis недоступен
func connectRedis(ctx context.Context, cfg config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, list cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	logger.Info("list cache enabled", zap.String("addr", cfg.RedisAddr))
	return rdb
}
