package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"amani-server/configs"
	httpEngine "amani-server/internal/app/http"
	"amani-server/internal/repositories"
	"amani-server/internal/utils"

	"go.uber.org/zap"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&configPath, "config", "", "Path to config file (long)")
	flag.Parse()

	// Initialize configuration and the global logger.
	configs.Init(&configPath)
	defer configs.Logger.Sync()

	configs.Logger.Info("Configuration loaded.",
		zap.String("configPath", configPath),
	)

	// Initialize shared connections (Postgres, Redis, S3) and run migrations.
	repositories.Init()

	// Email delivery for invitation flows.
	utils.InitEmailService(
		configs.Configs.Email.SMTPHost,
		configs.Configs.Email.SMTPPort,
		configs.Configs.Email.Username,
		configs.Configs.Email.Password,
	)

	// Create HTTP server and run it in a separate goroutine.
	httpServer := httpEngine.NewServer()
	go func() {
		if err := httpServer.Start(); err != nil {
			if err.Error() != "http: Server closed" {
				configs.Logger.Fatal("HTTP server error", zap.Error(err))
			}
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	configs.Logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		configs.Logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		configs.Logger.Info("HTTP server shutdown gracefully")
	}

	configs.Logger.Info("Server exited")
}
