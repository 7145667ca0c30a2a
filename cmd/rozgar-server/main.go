// HTTP API server. Exposes chat, preferences, recommendations, history and
// document ingestion over REST.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rozgar/internal/app"
	"rozgar/internal/config"
	"rozgar/internal/server"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml, then ~/.config/rozgar/config.yaml)")
	flag.Parse()

	var (
		cfg *config.AppConfig
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	assistant, err := app.Build(cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}

	if files := flag.Args(); len(files) > 0 {
		result, err := assistant.IngestFiles(context.Background(), files, cfg.Language.Default)
		if err != nil {
			logger.Fatal("ingest failed", zap.Error(err))
		}
		logger.Info("knowledge base loaded",
			zap.Int("documents", result.Documents),
			zap.Int("chunks", result.Chunks))
	}

	e := echo.New()
	e.HideBanner = true
	server.New(assistant, logger).Register(e)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}
