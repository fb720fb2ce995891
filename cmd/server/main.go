package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/smartextract/internal/api"
	"github.com/dgallion1/smartextract/internal/config"
	"github.com/dgallion1/smartextract/internal/pipeline"
	"github.com/dgallion1/smartextract/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	for _, key := range cfg.MissingCredentials() {
		log.Warn("credential not set, calls to this service will fail", "env", key)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	comps, err := pipeline.Build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(cfg.SessionTTL)
	go sessions.Run(ctx, 5*time.Minute)

	// Initialize HTTP server.
	srv := api.NewServer(sessions, comps.Service, comps.Model.Stats(), comps.Model.Model(), log, cfg)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 60 * time.Second,
		// Extraction can wait on the hosted parser for several minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		cancel()
		comps.Close()
	}()

	log.Info("starting smartextract", "port", cfg.Port, "provider", cfg.LLMProvider, "model", comps.Model.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
