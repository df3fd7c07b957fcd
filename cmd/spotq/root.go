package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jeevithdev/spotq/internal/config"
	"github.com/jeevithdev/spotq/internal/database"
	"github.com/jeevithdev/spotq/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "spotq",
	Short: "Foundry quality records service",
	Long: `spotq stores the quality records of a foundry: impact, tensile and
micro tensile tests, process logs, melting logs and cupola holder logs.

Configuration is read from SPOTQ_* environment variables and an optional
.env file, e.g. SPOTQ_DATABASE__URL or SPOTQ_SERVER__PORT.`,
	SilenceUsage: true,
}

// app is the state shared by commands that talk to the database.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
	db     *database.Database
}

// bootstrap loads configuration, builds the logger and, when connect is set,
// opens the database pool.
func bootstrap(ctx context.Context, connect bool, opts database.Options) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	log, closer := logger.New(cfg.Observability)
	a := &app{cfg: cfg, log: log, closer: closer}
	if !connect {
		return a, nil
	}
	db, err := database.Connect(ctx, cfg.Database, log, opts)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("database: %w", err)
	}
	a.db = db
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.closer.Close()
}
