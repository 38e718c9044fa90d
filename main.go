package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gocompare/adapters/api"
	"gocompare/app"
	"gocompare/internal"
	"gocompare/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, ok := internal.ParseLogLevel(appConfig.LogLevel)
	if !ok {
		log.Printf("Unknown LOG_LEVEL %q, using INFO", appConfig.LogLevel)
	}
	logger := internal.NewLogger(level)
	gin.SetMode(appConfig.Server.GinMode)

	service, err := app.NewComparisonService(appConfig.EngineConfig(), appConfig.Stats.Workers, logger)
	if err != nil {
		log.Fatalf("Failed to create comparison service: %v", err)
	}

	server := api.NewServer(service, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + appConfig.Server.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-stop:
		logger.Info("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed: %v", err)
		}
	}
}
