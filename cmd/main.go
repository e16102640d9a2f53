/*
Package main is the entry point for the planning poker server.

It loads configuration, initializes the global logger, builds the room
registry and HTTP router, and runs the server until an interrupt signal
triggers a graceful shutdown. All room state is in memory and gone once
the process exits.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scrumpoker/internal/app/poker"
	"scrumpoker/internal/configs"
	"scrumpoker/internal/handler"
	"scrumpoker/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("addr", cfg.Addr).
		Floats64("vote_options", cfg.VoteOptions).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := poker.NewRegistry()

	router := handler.Router(&handler.AppDeps{
		Registry: registry,
		Config:   cfg,
	})

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     router,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Planning poker server listening on %s", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
