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

	"github.com/joho/godotenv"

	"github.com/promptline/promptline/internal/api"
	"github.com/promptline/promptline/internal/audio"
	"github.com/promptline/promptline/internal/config"
	"github.com/promptline/promptline/internal/dialer"
	"github.com/promptline/promptline/internal/sheetlog"
	"github.com/promptline/promptline/internal/storage"
)

func main() {
	// Local development reads secrets from a .env file; in production the
	// environment is set by the deployment and no file exists.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Configure structured logging.
	slog.SetDefault(slog.New(cfg.SlogHandler(os.Stdout)))

	slog.Info("starting promptline",
		"http_port", cfg.HTTPPort,
		"twilio_configured", cfg.TwilioConfigured(),
		"storage_configured", cfg.StorageConfigured(),
		"sheet_logging", cfg.LogWebhookURL != "",
	)
	if !cfg.AdminConfigured() {
		slog.Warn("no admin token configured, admin endpoints will refuse all requests")
	}

	set := audio.NewSet(cfg.MenuAudioURL, cfg.Opt1AudioURL, cfg.Opt3AudioURL)

	calllog := sheetlog.NewLogger(cfg.LogWebhookURL, cfg.Location())

	dial := dialer.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.TwilioConfigured())

	signer, err := storage.New(context.Background(), cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		slog.Error("failed to initialize upload signer", "error", err)
		os.Exit(1)
	}

	handler := api.NewServer(cfg, set, dial, signer, calllog)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt or server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		slog.Error("http server error", "error", err)
	}

	// Graceful shutdown with timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("promptline stopped")
}
