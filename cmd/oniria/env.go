package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pbaille/oniria/internal/app"
	"github.com/pbaille/oniria/internal/config"
	"github.com/pbaille/oniria/internal/interpret"
	"github.com/pbaille/oniria/internal/journal"
	"github.com/pbaille/oniria/internal/logging"
	"github.com/pbaille/oniria/internal/narrative"
	"github.com/pbaille/oniria/internal/store"
)

// env is what every command runs against.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	svc *app.Service
	// warning is set when stored dreams could not be read.
	warning error
	backend store.Backend
}

func (e *env) Close() error {
	return e.backend.Close()
}

// getEnv loads config, opens the store and reads the journal. A storage
// read failure is logged and leaves the journal empty.
func getEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	b, err := store.Open(store.Kind(cfg.Backend), cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	j := journal.New(b, journal.WithLogger(log.With().Str("component", "journal").Logger()))

	opts := []app.Option{app.WithLogger(log)}
	client, err := interpret.New(interpret.Config{
		APIKey:   cfg.Gemini.APIKey,
		Model:    cfg.Gemini.Model,
		Endpoint: cfg.Gemini.Endpoint,
		Timeout:  cfg.Gemini.Timeout,
	}, interpret.WithLogger(log.With().Str("component", "interpret").Logger()))
	switch {
	case err == nil:
		opts = append(opts, app.WithInterpreter(interpret.NewLatest(client)))
	case errors.Is(err, interpret.ErrNoAPIKey):
		log.Debug().Msg("no gemini api key, interpretations are local")
	default:
		b.Close()
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		log:     log,
		svc:     app.New(j, narrative.New(nil), opts...),
		backend: b,
	}
	if err := e.svc.Load(cmdContext(cmd)); err != nil {
		log.Warn().Err(err).Msg("could not read stored dreams")
		e.warning = err
	}
	return e, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
