package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/records"
)

// Store persists documents of one record kind as JSONB rows. Identity and
// timestamps live in columns; the record body lives in the data column.
type Store[T any, P model.Record[T]] struct {
	pool  *pgxpool.Pool
	kind  records.Kind
	table string
}

// NewStore returns a Store for kind using the given pool.
func NewStore[T any, P model.Record[T]](pool *pgxpool.Pool, kind records.Kind) *Store[T, P] {
	return &Store[T, P]{
		pool:  pool,
		kind:  kind,
		table: pgx.Identifier{kind.Collection}.Sanitize(),
	}
}

// SummaryRow is one group of a kind's summary report.
type SummaryRow struct {
	Group  map[string]string  `json:"group"`
	Count  int64              `json:"count"`
	Totals map[string]float64 `json:"totals"`
}

// List returns all documents, newest first.
func (s *Store[T, P]) List(ctx context.Context) ([]P, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, data, created_at, updated_at
		FROM `+s.table+`
		ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// ListByDate returns documents whose date field lies within [from, to],
// newest first. A zero bound is open.
func (s *Store[T, P]) ListByDate(ctx context.Context, from, to model.Date) ([]P, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, data, created_at, updated_at
		FROM `+s.table+`
		WHERE ($1::text = '' OR data->>$3::text >= $1::text)
		  AND ($2::text = '' OR data->>$3::text <= $2::text)
		ORDER BY created_at DESC, seq DESC`,
		from.String(), to.String(), s.kind.DateField)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// Get returns one document, or ErrNotFound.
func (s *Store[T, P]) Get(ctx context.Context, id uuid.UUID) (P, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, data, created_at, updated_at
		FROM `+s.table+` WHERE id = $1`, id)
	return s.scan(row)
}

// Create inserts rec and sets its id and timestamps.
func (s *Store[T, P]) Create(ctx context.Context, rec P) error {
	body, err := encode[T, P](rec)
	if err != nil {
		return err
	}
	meta := rec.Metadata()
	id := uuid.New()
	err = s.pool.QueryRow(ctx, `
		INSERT INTO `+s.table+` (id, data)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`, id, body).Scan(&meta.CreatedAt, &meta.UpdatedAt)
	if err != nil {
		return s.mapWriteError(err, body)
	}
	meta.ID = id
	return nil
}

// Update locks the document, applies mutate to it and stores the result.
// mutate cannot change the id or creation time. If mutate returns an error
// nothing is written and that error is returned.
func (s *Store[T, P]) Update(ctx context.Context, id uuid.UUID, mutate func(P) error) (P, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rec, err := s.scan(tx.QueryRow(ctx, `
		SELECT id, data, created_at, updated_at
		FROM `+s.table+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	orig := *rec.Metadata()
	if err := mutate(rec); err != nil {
		return nil, err
	}
	meta := rec.Metadata()
	*meta = orig

	body, err := encode[T, P](rec)
	if err != nil {
		return nil, err
	}
	err = tx.QueryRow(ctx, `
		UPDATE `+s.table+` SET data = $2, updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING updated_at`, id, body).Scan(&meta.UpdatedAt)
	if err != nil {
		return nil, s.mapWriteError(err, body)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes one document, or returns ErrNotFound.
func (s *Store[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store[T, P]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM `+s.table).Scan(&n)
	return n, err
}

// Summary groups documents within [from, to] by the kind's summary keys and
// totals its numeric fields. Groups are ordered by the first key descending.
func (s *Store[T, P]) Summary(ctx context.Context, from, to model.Date) ([]SummaryRow, error) {
	sum := s.kind.Summary
	if sum == nil {
		return nil, fmt.Errorf("%s has no summary", s.kind.Name)
	}

	args := []any{from.String(), to.String(), s.kind.DateField}
	var cols, order []string
	for i, g := range sum.GroupBy {
		args = append(args, jsonPath(g))
		cols = append(cols, fmt.Sprintf("data #>> $%d::text[]", len(args)))
		dir := "ASC"
		if i == 0 {
			dir = "DESC"
		}
		order = append(order, fmt.Sprintf("%d %s", i+1, dir))
	}
	cols = append(cols, "count(*)")
	for _, f := range sum.Sum {
		args = append(args, jsonPath(f))
		cols = append(cols, fmt.Sprintf("COALESCE(sum((data #>> $%d::text[])::float8), 0)", len(args)))
	}
	groupBy := make([]string, len(sum.GroupBy))
	for i := range sum.GroupBy {
		groupBy[i] = fmt.Sprint(i + 1)
	}

	q := `SELECT ` + strings.Join(cols, ", ") + `
		FROM ` + s.table + `
		WHERE ($1::text = '' OR data->>$3::text >= $1::text)
		  AND ($2::text = '' OR data->>$3::text <= $2::text)
		GROUP BY ` + strings.Join(groupBy, ", ") + `
		ORDER BY ` + strings.Join(order, ", ")

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SummaryRow{}
	for rows.Next() {
		groups := make([]*string, len(sum.GroupBy))
		totals := make([]float64, len(sum.Sum))
		row := SummaryRow{Group: map[string]string{}, Totals: map[string]float64{}}
		dest := make([]any, 0, len(groups)+1+len(totals))
		for i := range groups {
			dest = append(dest, &groups[i])
		}
		dest = append(dest, &row.Count)
		for i := range totals {
			dest = append(dest, &totals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, g := range sum.GroupBy {
			if groups[i] != nil {
				row.Group[g] = *groups[i]
			}
		}
		for i, f := range sum.Sum {
			row.Totals[f] = totals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store[T, P]) scan(row pgx.Row) (P, error) {
	var (
		id        uuid.UUID
		data      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &data, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode[T, P](id, data, createdAt, updatedAt)
}

func (s *Store[T, P]) collect(rows pgx.Rows) ([]P, error) {
	defer rows.Close()
	list := []P{}
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (s *Store[T, P]) mapWriteError(err error, body []byte) error {
	if !isUniqueViolation(err) {
		return err
	}
	dup := &DuplicateError{Field: s.kind.UniqueField}
	var doc map[string]any
	if json.Unmarshal(body, &doc) == nil {
		if v, ok := doc[s.kind.UniqueField].(string); ok {
			dup.Value = v
		}
	}
	return dup
}

// encode marshals the record body without its metadata.
func encode[T any, P model.Record[T]](rec P) ([]byte, error) {
	cp := *rec
	*P(&cp).Metadata() = model.Meta{}
	body, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return body, nil
}

func decode[T any, P model.Record[T]](id uuid.UUID, data []byte, createdAt, updatedAt time.Time) (P, error) {
	var rec T
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	p := P(&rec)
	*p.Metadata() = model.Meta{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt}
	return p, nil
}

func jsonPath(field string) []string {
	return strings.Split(field, ".")
}
