package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/tern/v2/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const versionTable = "schema_version"

// Migrate creates or upgrades the record tables and their indexes to the
// latest embedded migration.
func (d *Database) Migrate(ctx context.Context) error {
	conn, err := d.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	defer conn.Release()

	m, err := migrate.NewMigrator(ctx, conn.Conn(), versionTable)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	if err := m.LoadMigrations(sub); err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m.OnStart = func(sequence int32, name, direction, _ string) {
		d.log.Info().Int32("sequence", sequence).Str("name", name).Str("direction", direction).Msg("applying migration")
	}
	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	version, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("current version: %w", err)
	}
	d.log.Info().Int32("version", version).Int("available", len(m.Migrations)).Msg("schema up to date")
	return nil
}
