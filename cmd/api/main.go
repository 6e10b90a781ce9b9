package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/anubhav-ai/assistant/internal/config"
	"github.com/anubhav-ai/assistant/internal/handler"
	chathandler "github.com/anubhav-ai/assistant/internal/handler/chat"
	"github.com/anubhav-ai/assistant/internal/model/persona"
	"github.com/anubhav-ai/assistant/internal/service/ai"
	"github.com/anubhav-ai/assistant/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logFile, err := telemetry.InitLogger(cfg.Log.Dir, "relay.log", telemetry.ParseLevel(cfg.Log.Level), os.Stdout)
	if err != nil {
		slog.Error("failed to initialise logger", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	if envErr != nil {
		logger.Warn("failed to load .env file, continuing with system environment variables only", "error", envErr)
	}

	if cfg.Telemetry.Enabled {
		cleanup, err := telemetry.InitTelemetry(ctx, cfg.Log.Dir)
		if err != nil {
			logger.Warn("telemetry disabled", "error", err)
		} else {
			defer cleanup()
		}
	}

	personas := persona.Seed()
	if cfg.Persona.File != "" {
		personas, err = persona.LoadFile(cfg.Persona.File, personas)
		if err != nil {
			logger.Error("failed to load persona file", "path", cfg.Persona.File, "error", err)
			os.Exit(1)
		}
	}
	personaStore := persona.NewMemoryStore(personas)
	if _, ok := personaStore.FindByID(cfg.Persona.ID); !ok {
		logger.Warn("default persona not found", "persona", cfg.Persona.ID)
	}

	// A nil replier keeps the relay up and answers 500 until a credential is configured.
	var replier chathandler.Replier
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			logger.Warn("failed to initialize AI service, continuing without upstream", "error", err)
		} else {
			replier = aiService
			logger.Info("AI service initialized", "provider", aiService.Provider())
		}
	} else {
		logger.Warn("upstream API key not configured, /api/chat will return 500", "provider", cfg.AI.Provider)
	}

	router := handler.NewRouter(personaStore, cfg.Persona.ID, replier, cfg.Server.WebDir)

	startServer(ctx, logger, cfg.Server, router)
}

func startServer(ctx context.Context, logger *slog.Logger, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("chat relay listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
