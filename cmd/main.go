/*
Package main is the entry point for the user directory service.

It is responsible for loading configuration, initializing the global logging system,
wiring the remote directory client and the session manager into the HTTP router,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"userdir/internal/app/directory"
	"userdir/internal/app/session"
	"userdir/internal/app/user"
	"userdir/internal/configs"
	"userdir/internal/handler"
	"userdir/internal/pkg/limiter"
	"userdir/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("users_api", cfg.UsersAPIBaseURL).
		Dur("users_api_timeout", cfg.UsersAPITimeout).
		Bool("validate_website", cfg.ValidateWebsite).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	remote := directory.NewService(directory.ServiceConfig{
		BaseURL: cfg.UsersAPIBaseURL,
		Timeout: cfg.UsersAPITimeout,
	})

	sessions := session.NewManager(session.Config{
		Remote:          remote,
		NotificationTTL: cfg.NotificationTTL,
		Validation:      user.ValidationOptions{EnforceWebsite: cfg.ValidateWebsite},
		IdleTimeout:     cfg.SessionIdleTimeout,
	})

	mutationLimiter := limiter.NewIPRateLimiter(rate.Limit(cfg.MutationRate), cfg.MutationBurst)

	router := handler.Router(&handler.AppDeps{
		Sessions:        sessions,
		Config:          cfg,
		MutationLimiter: mutationLimiter,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:        serverAddr,
		Handler:     router,
		ReadTimeout: 5 * time.Second,
		// Delete confirmations wait on the remote API, which may have no timeout.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("User directory starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	sessions.Shutdown()
	mutationLimiter.Stop()

	logx.Info("Server gracefully stopped.")
}
