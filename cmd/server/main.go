package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/FerryF19999/chatinterface/internal/api"
	"github.com/FerryF19999/chatinterface/internal/broadcast"
	"github.com/FerryF19999/chatinterface/internal/config"
	"github.com/FerryF19999/chatinterface/internal/dispatch"
	"github.com/FerryF19999/chatinterface/internal/gateway"
	"github.com/FerryF19999/chatinterface/internal/handlers"
	"github.com/FerryF19999/chatinterface/internal/probe"
	"github.com/FerryF19999/chatinterface/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Roster
	roster := store.DefaultRoster()
	if cfg.RosterPath != "" {
		var err error
		roster, err = store.LoadRoster(cfg.RosterPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.RosterPath).Msg("roster load failed")
		}
	}

	// Fan-out transport
	var (
		broadcaster broadcast.Broadcaster
		hub         *broadcast.Hub
		relay       *broadcast.RedisRelay
	)
	switch cfg.BroadcastMode {
	case config.ModeRelay:
		var err error
		relay, err = broadcast.NewRedisRelay(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("relay connection failed")
		}
		broadcaster = relay
		logger.Info().Str("channel", broadcast.EventsChannel()).Msg("publishing events to Redis relay")
	default:
		hub = broadcast.NewHub(logger)
		broadcaster = hub
	}

	// Entity store
	st, err := store.New(roster, broadcaster, cfg.MessageCap, cfg.ActivityCap)
	if err != nil {
		logger.Fatal().Err(err).Msg("store init failed")
	}

	// Agent responder gateway
	var responder gateway.Responder
	if cfg.AgentCommand != "" {
		responder, err = gateway.NewExecResponder(cfg.AgentCommand)
		if err != nil {
			logger.Fatal().Err(err).Msg("agent command invalid")
		}
	} else {
		logger.Warn().Msg("AGENT_CMD not set, agent calls will use the fallback reply")
		responder = gateway.ResponderFunc(func(ctx context.Context, agentID, input, callerID string) (string, error) {
			return "", context.DeadlineExceeded
		})
	}

	dispatcher := dispatch.New(st, responder, cfg.AgentTimeout, logger)

	// Optional health probe overlay
	var prober probe.Prober
	if cfg.SessionDir != "" {
		prober = probe.NewFileProber(cfg.SessionDir)
		logger.Info().Str("dir", cfg.SessionDir).Msg("health probe enabled")
	}

	// Create router
	h := handlers.NewHandler(st, dispatcher, hub, relay, prober, logger)
	router := api.NewRouter(logger, h)

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("mode", cfg.BroadcastMode).
			Int("participants", len(roster)).
			Msg("starting chatinterface server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Let in-flight dispatches settle, then stop accepting connections.
	dispatcher.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	cancel()
	if relay != nil {
		_ = relay.Close()
	}

	logger.Info().Msg("server stopped")
}
