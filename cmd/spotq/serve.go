package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jeevithdev/spotq/internal/database"
	"github.com/jeevithdev/spotq/internal/server"
	"github.com/jeevithdev/spotq/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Connect to PostgreSQL (retrying until it answers), apply pending
migrations when database.migrate_on_start is set and serve the REST API
until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, false, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		nr, err := server.NewRelicApp(a.cfg.Observability)
		if err != nil {
			a.log.Warn().Err(err).Msg("new relic disabled")
			nr = nil
		}
		if nr != nil {
			defer nr.Shutdown(5 * time.Second)
			a.log.Info().Msg("new relic enabled")
		}

		a.db, err = database.Connect(ctx, a.cfg.Database, a.log, database.Options{NewRelic: nr != nil})
		if err != nil {
			return err
		}
		if a.cfg.Database.MigrateOnStart {
			if err := a.db.Migrate(ctx); err != nil {
				return err
			}
		}

		archive, err := storage.NewArchive(a.cfg.Storage)
		if err != nil {
			return err
		}

		srv, err := server.New(a.cfg, server.Deps{DB: a.db, Archive: archive, NewRelic: nr, Log: a.log})
		if err != nil {
			return err
		}
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
