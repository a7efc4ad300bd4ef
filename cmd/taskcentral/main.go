package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskcentral/internal/client"
	"github.com/BuzzLyutic/taskcentral/internal/config"
	"github.com/BuzzLyutic/taskcentral/internal/prefs"
	"github.com/BuzzLyutic/taskcentral/internal/tui"
	"github.com/BuzzLyutic/taskcentral/internal/view"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}

	// Логи пишем в файл, экран занят интерфейсом
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{cfg.LogPath}
	logCfg.ErrorOutputPaths = []string{cfg.LogPath}
	logger, err := logCfg.Build()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	storage, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		logger.Fatal("Failed to open prefs", zap.String("path", cfg.PrefsPath), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIURL, nil)
	list := view.NewTaskList(api, storage, cfg.OwnerID, logger, view.WithDownloadDir(cfg.DownloadDir))

	logger.Info("Client started", zap.String("api", cfg.APIURL), zap.Int64("owner_id", cfg.OwnerID))
	if err := tui.Run(ctx, list); err != nil {
		logger.Error("TUI stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
