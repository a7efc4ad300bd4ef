package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskcentral/internal/attachment"
	"github.com/BuzzLyutic/taskcentral/internal/config"
	"github.com/BuzzLyutic/taskcentral/internal/handler"
	"github.com/BuzzLyutic/taskcentral/internal/repo"
	"github.com/BuzzLyutic/taskcentral/internal/schema"
	"github.com/BuzzLyutic/taskcentral/internal/service"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}

	// Подключаем логгер
	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Подключаем БД
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL) // Создаем новое соединение к БД
	if err != nil {
		logger.Fatal("Failed to connect to Database.", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
	}
	defer pool.Close() // Запланированное закрытие соединения

	if err := pool.Ping(context.Background()); err != nil { // Пытаемся пингануть БД
		logger.Fatal("Failed to ping the Database.", zap.Error(err))
	}
	logger.Info("Successfully connected to the Database!")

	store, err := attachment.NewStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("Failed to prepare upload dir", zap.String("dir", cfg.UploadDir), zap.Error(err))
	}

	validator, err := schema.New()
	if err != nil {
		logger.Fatal("Failed to compile request schemas", zap.Error(err))
	}

	taskService := service.NewTaskService(repo.NewTaskRepo(pool), repo.NewUserRepo(pool))
	router := handler.NewRouter(
		handler.NewTaskHandler(taskService, validator, logger),
		handler.NewFileHandler(store, cfg.MaxUploadBytes, logger),
		logger,
		cfg.AllowedOrigin,
	)

	srv := http.Server{ // Создаем сервер
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("port", srv.Addr), zap.String("origin", cfg.AllowedOrigin))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == config.EnvProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
