// Package server provides the public entry point for initializing the Bot
// Factory engine server.
//
// This package exists in pkg/ (not internal/) so a hosting repo can import it
// and compose the full server with its own middleware:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/botfactory/botfactory/engine/internal/api"
	"github.com/botfactory/botfactory/engine/internal/api/handlers"
	"github.com/botfactory/botfactory/engine/internal/classify"
	"github.com/botfactory/botfactory/engine/internal/config"
	"github.com/botfactory/botfactory/engine/internal/dispatch"
	"github.com/botfactory/botfactory/engine/internal/engine"
	"github.com/botfactory/botfactory/engine/internal/kv"
	"github.com/botfactory/botfactory/engine/internal/runtime"
	"github.com/botfactory/botfactory/engine/internal/store"
	"github.com/botfactory/botfactory/engine/internal/telemetry"
)

// Server holds the initialized Bot Factory engine.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the bot configuration and trace store.
	Store store.Store

	// Engine handles inbound messages; exposed so embedders can feed
	// messages without going through HTTP.
	Engine *engine.Engine

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all engine components from the environment and returns a
// ready Server.
func New(ctx context.Context) (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig initializes the engine with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	// Persistence: PostgreSQL when a database URL is set, a file-backed
	// document store otherwise.
	var docs kv.Store
	if cfg.DatabaseURL != "" {
		docs, err = kv.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info().Msg("PostgreSQL document store initialized")
	} else {
		docs, err = kv.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		log.Info().Str("dir", cfg.DataDir).Msg("File document store initialized")
	}

	dataStore := store.NewMemoryStore(docs)

	dispatcher := dispatch.NewDispatcher()
	dispatch.RegisterBuiltins(dispatcher, dispatch.PlatformConfig{
		FacebookEndpoint:  cfg.Dispatch.FacebookEndpoint,
		InstagramEndpoint: cfg.Dispatch.InstagramEndpoint,
		LinkedInEndpoint:  cfg.Dispatch.LinkedInEndpoint,
		XEndpoint:         cfg.Dispatch.XEndpoint,
		SMTPAddr:          cfg.Dispatch.SMTPAddr,
		SMTPFrom:          cfg.Dispatch.SMTPFrom,
	})

	eng := engine.New(dataStore, classify.New(), runtime.NewMemoryStateStore(), dispatcher)
	log.Info().Msg("Decision engine initialized")

	h := handlers.New(dataStore, eng)
	router := api.NewRouter(h, cfg)

	return &Server{
		Handler:      router,
		Store:        dataStore,
		Engine:       eng,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
