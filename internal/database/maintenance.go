package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// CollectionStats describes the size of one record table.
type CollectionStats struct {
	Collection string `json:"collection"`
	Count      int64  `json:"count"`
	TableBytes int64  `json:"tableBytes"`
	IndexBytes int64  `json:"indexBytes"`
}

// Stats reports row counts and on-disk sizes for the given collections.
func (d *Database) Stats(ctx context.Context, collections []string) ([]CollectionStats, error) {
	out := make([]CollectionStats, 0, len(collections))
	for _, c := range collections {
		st := CollectionStats{Collection: c}
		q := fmt.Sprintf(`SELECT count(*), pg_total_relation_size($1::text::regclass), pg_indexes_size($1::text::regclass) FROM %s`,
			pgx.Identifier{c}.Sanitize())
		if err := d.Pool.QueryRow(ctx, q, c).Scan(&st.Count, &st.TableBytes, &st.IndexBytes); err != nil {
			return nil, fmt.Errorf("stats %s: %w", c, err)
		}
		out = append(out, st)
	}
	return out, nil
}

// Clear removes every document from the given collections.
func (d *Database) Clear(ctx context.Context, collections []string) error {
	if len(collections) == 0 {
		return nil
	}
	names := make([]string, 0, len(collections))
	for _, c := range collections {
		names = append(names, pgx.Identifier{c}.Sanitize())
	}
	if _, err := d.Pool.Exec(ctx, "TRUNCATE "+strings.Join(names, ", ")+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	d.log.Warn().Strs("collections", collections).Msg("collections cleared")
	return nil
}

// Export returns every document of a collection, oldest first, with its
// metadata merged into the body the same way the API renders it.
func (d *Database) Export(ctx context.Context, collection string) ([]json.RawMessage, error) {
	q := fmt.Sprintf(`
		SELECT jsonb_build_object('_id', id, 'createdAt', created_at, 'updatedAt', updated_at) || data
		FROM %s
		ORDER BY created_at, seq`, pgx.Identifier{collection}.Sanitize())
	rows, err := d.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", collection, err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[json.RawMessage])
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", collection, err)
	}
	return docs, nil
}
