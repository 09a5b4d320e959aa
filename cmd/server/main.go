// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/api"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/app"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/config"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/logging"
	"github.com/zedarvates/StoryCore-Engine-sub001/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(logging.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	container, err := app.InitServices(cfg, logger)
	if err != nil {
		logger.Fatal("service initialization failed", zap.Error(err))
	}

	router, err := api.SetupRouter(container, logger, cfg.DebugMode)
	if err != nil {
		logger.Fatal("router setup failed", zap.Error(err))
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// stop in-flight generation jobs before closing connections
	if orchestrator, ok := container.Get("orchestrator").(*services.GenerationOrchestrator); ok {
		orchestrator.CancelAllJobs()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
