package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeevithdev/spotq/internal/database"
	"github.com/jeevithdev/spotq/internal/records"
	"github.com/jeevithdev/spotq/internal/storage"
)

var (
	clearYes   bool
	backupKind string
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the database answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		hs, err := a.db.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "database %s (latency %s, %d/%d connections)\n",
			hs.Status, hs.Latency, hs.TotalConns, hs.MaxConns)
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create record tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.db.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document counts and sizes per collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.db.Stats(cmd.Context(), records.Collections())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COLLECTION\tDOCUMENTS\tTABLE\tINDEXES")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Collection, s.Count, humanBytes(s.TableBytes), humanBytes(s.IndexBytes))
		}
		return w.Flush()
	},
}

var dbClearCmd = &cobra.Command{
	Use:   "clear [kind...]",
	Short: "Delete every record of the given kinds (all kinds when none given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		collections, err := collectionsFor(args)
		if err != nil {
			return err
		}
		if !clearYes {
			return fmt.Errorf("refusing to clear %v without --yes", collections)
		}
		a, err := bootstrap(cmd.Context(), true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.db.Clear(cmd.Context(), collections); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %d collections\n", len(collections))
		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a gzip JSON snapshot of each collection to the backup bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		collections, err := collectionsFor(kindArgs(backupKind))
		if err != nil {
			return err
		}
		a, err := bootstrap(ctx, true, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		archive, err := storage.NewArchive(a.cfg.Storage)
		if err != nil {
			return err
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("backup bucket: %w", err)
		}
		for _, c := range collections {
			docs, err := a.db.Export(ctx, c)
			if err != nil {
				return err
			}
			key, err := archive.PutSnapshot(ctx, c, docs)
			if err != nil {
				return fmt.Errorf("upload %s: %w", c, err)
			}
			a.log.Info().Str("collection", c).Int("documents", len(docs)).Str("key", key).Msg("snapshot uploaded")
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d documents\t%s\n", c, len(docs), key)
		}
		return nil
	},
}

var dbBackupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		collection := ""
		if backupKind != "" {
			cs, err := collectionsFor([]string{backupKind})
			if err != nil {
				return err
			}
			collection = cs[0]
		}
		a, err := bootstrap(cmd.Context(), false, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		archive, err := storage.NewArchive(a.cfg.Storage)
		if err != nil {
			return err
		}
		list, err := archive.List(cmd.Context(), collection)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")
		for _, o := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\n", o.Key, humanBytes(o.Size), o.LastModified.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var dbSnapshotCmd = &cobra.Command{
	Use:   "snapshot KEY",
	Short: "Print the documents of one snapshot, one JSON document per line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context(), false, database.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		archive, err := storage.NewArchive(a.cfg.Storage)
		if err != nil {
			return err
		}
		docs, err := archive.GetSnapshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, d := range docs {
			if _, err := fmt.Fprintf(out, "%s\n", d); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbPingCmd, dbMigrateCmd, dbStatsCmd, dbClearCmd, dbBackupCmd, dbBackupsCmd, dbSnapshotCmd)

	dbClearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deletion")
	dbBackupCmd.Flags().StringVar(&backupKind, "kind", "", "only this record kind, e.g. melting-logs")
	dbBackupsCmd.Flags().StringVar(&backupKind, "kind", "", "only snapshots of this record kind")
}

func kindArgs(kind string) []string {
	if kind == "" {
		return nil
	}
	return []string{kind}
}

// collectionsFor maps kind names to their collections; no names means all.
func collectionsFor(kinds []string) ([]string, error) {
	if len(kinds) == 0 {
		return records.Collections(), nil
	}
	byName := map[string]string{}
	for _, k := range records.All() {
		byName[k.Name] = k.Collection
	}
	out := make([]string, 0, len(kinds))
	for _, name := range kinds {
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown record kind %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
