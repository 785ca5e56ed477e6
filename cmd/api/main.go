package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cashcarbc/voice-intake/cmd/mainconfig"
	"github.com/cashcarbc/voice-intake/internal/app/bootstrap"
	appconfig "github.com/cashcarbc/voice-intake/internal/config"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

func main() {
	// Local runs read .env; deployed environments set variables directly.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting voice intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"session_backend", cfg.SessionBackend,
	)

	ctx := context.Background()
	clients := setupAWSClients(ctx, cfg, logger)

	app, err := bootstrap.Build(ctx, cfg, clients, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupAWSClients only loads AWS configuration when a sink needs it.
func setupAWSClients(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) bootstrap.AWSClients {
	needsSQS := strings.TrimSpace(cfg.LeadsQueueURL) != ""
	needsSES := cfg.EmailProvider == "ses"
	if !needsSQS && !needsSES {
		return bootstrap.AWSClients{}
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config; SQS and SES sinks disabled", "error", err)
		return bootstrap.AWSClients{}
	}

	var clients bootstrap.AWSClients
	if needsSQS {
		clients.SQS = mainconfig.SQSClient(awsCfg, cfg)
	}
	if needsSES {
		clients.SES = mainconfig.SESClient(awsCfg, cfg)
	}
	return clients
}
