/*
Package main is the entry point for the study-room signaling server.

It is responsible for loading configuration, initializing the global logging system,
opening the study store, setting up the HTTP server and the signaling registry,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
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

	"studyroom/internal/app/admission"
	"studyroom/internal/app/signaling"
	"studyroom/internal/app/store"
	"studyroom/internal/configs"
	"studyroom/internal/handler"
	"studyroom/internal/pkg/auth/jwt"
	"studyroom/internal/pkg/logx"
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
		Str("store_driver", cfg.StoreDriver).
		Str("timezone", cfg.Timezone).
		Dur("admit_lead", cfg.AdmitLead).
		Dur("admit_tail", cfg.AdmitTail).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	studyStore, err := store.Open(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open study store", "driver", cfg.StoreDriver)
	}

	// Validated by LoadConfig.
	loc, _ := time.LoadLocation(cfg.Timezone)
	gate := admission.NewGate(studyStore,
		admission.WithLocation(loc),
		admission.WithWindow(cfg.AdmitLead, cfg.AdmitTail),
	)

	registry := signaling.NewRegistry()
	deps := handler.NewAppDeps(cfg, registry, gate, jwt.NewLedger())

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Study Room Signaling starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// Hijacked websocket connections are not tracked by the server; close them explicitly.
	registry.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	deps.Close()

	if err := studyStore.Close(shutdownCtx); err != nil {
		logx.Error(err, "Failed to close study store")
	}

	logx.Info("Server gracefully stopped.")
}
