package repository

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevithdev/spotq/internal/config"
	"github.com/jeevithdev/spotq/internal/database"
	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/records"
)

func ptr[T any](v T) *T { return &v }

func TestEncodeDecode_MetadataStaysOutOfBody(t *testing.T) {
	rec := &model.MeltingLog{
		Meta:      model.Meta{ID: uuid.New(), CreatedAt: time.Now()},
		Date:      model.NewDate(2024, time.June, 3),
		HeatNo:    "M-12",
		Shift:     "B",
		FurnaceNo: "2",
		Tapping:   model.Tapping{MetalKgs: ptr(480.0)},
	}
	body, err := encode[model.MeltingLog](rec)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.NotContains(t, doc, "_id")
	assert.NotContains(t, doc, "createdAt")
	assert.Equal(t, "M-12", doc["heatNo"])
	assert.NotEqual(t, uuid.Nil, rec.ID, "encoding does not touch the caller's record")

	id := uuid.New()
	created := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	got, err := decode[model.MeltingLog](id, body, created, created)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, 480.0, *got.Tapping.MetalKgs)
	assert.Equal(t, "2024-06-03", got.Date.String())
}

func TestMapWriteError(t *testing.T) {
	s := NewStore[model.MeltingLog](nil, records.MeltingLogs)

	err := s.mapWriteError(&pgconn.PgError{Code: "23505"}, []byte(`{"heatNo":"M-12"}`))
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "heatNo", dup.Field)
	assert.Equal(t, "M-12", dup.Value)
	assert.Equal(t, `duplicate heatNo "M-12"`, dup.Error())

	other := &pgconn.PgError{Code: "23502"}
	assert.Same(t, other, s.mapWriteError(other, nil))
}

func TestJSONPath(t *testing.T) {
	assert.Equal(t, []string{"tapping", "metalKgs"}, jsonPath("tapping.metalKgs"))
	assert.Equal(t, []string{"date"}, jsonPath("date"))
}

func testDatabase(t *testing.T) *database.Database {
	t.Helper()
	url := os.Getenv("SPOTQ_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SPOTQ_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	cfg := config.Default().Database
	cfg.URL = url
	cfg.ConnectMaxAttempts = 1
	db, err := database.Connect(ctx, cfg, zerolog.Nop(), database.Options{})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Clear(ctx, append(records.Collections(), "users")))
	return db
}

func meltingLog(heat string, day int, shift string, kgs float64) *model.MeltingLog {
	return &model.MeltingLog{
		Date:      model.NewDate(2024, time.June, day),
		HeatNo:    heat,
		Shift:     shift,
		FurnaceNo: "1",
		Tapping:   model.Tapping{MetalKgs: ptr(kgs)},
	}
}

func TestStore_CRUD(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	s := NewStore[model.MeltingLog](db.Pool, records.MeltingLogs)

	first := meltingLog("M-1", 1, "A", 500)
	require.NoError(t, s.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := meltingLog("M-2", 2, "B", 450)
	require.NoError(t, s.Create(ctx, second))

	err := s.Create(ctx, meltingLog("M-1", 3, "A", 10))
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "heatNo", dup.Field)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	got, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "M-1", got.HeatNo)

	updated, err := s.Update(ctx, first.ID, func(m *model.MeltingLog) error {
		m.Remarks = "slag skimmed"
		m.ID = uuid.New()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID, "id cannot be changed")
	assert.Equal(t, "slag skimmed", updated.Remarks)
	assert.True(t, !updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = s.Update(ctx, first.ID, func(m *model.MeltingLog) error {
		m.HeatNo = "M-2"
		return nil
	})
	require.ErrorAs(t, err, &dup)

	_, err = s.Update(ctx, uuid.New(), func(*model.MeltingLog) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	byDate, err := s.ListByDate(ctx, model.NewDate(2024, time.June, 2), model.Date{})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, second.ID, byDate[0].ID)

	summary, err := s.Summary(ctx, model.Date{}, model.Date{})
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "2024-06-02", summary[0].Group["date"])
	assert.Equal(t, "B", summary[0].Group["shift"])
	assert.Equal(t, int64(1), summary[0].Count)
	assert.Equal(t, 450.0, summary[0].Totals["tapping.metalKgs"])
	assert.Equal(t, 0.0, summary[0].Totals["totalUnits"])

	require.NoError(t, s.Delete(ctx, first.ID))
	assert.ErrorIs(t, s.Delete(ctx, first.ID), ErrNotFound)
	_, err = s.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUserRepository(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	r := NewUserRepository(db.Pool)

	u := &model.User{Username: "qa.lead", Name: "QA Lead", Role: model.RoleAdmin, PasswordHash: "plain"}
	require.NoError(t, r.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	var dup *DuplicateError
	require.ErrorAs(t, r.Create(ctx, &model.User{Username: "QA.Lead", Role: model.RoleViewer, PasswordHash: "x"}), &dup)

	got, err := r.GetByUsername(ctx, "QA.LEAD")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.RoleAdmin, got.Role)

	require.NoError(t, r.UpdatePasswordHash(ctx, u.ID, "$2a$10$abc"))
	got, err = r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abc", got.PasswordHash)

	_, err = r.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.UpdatePasswordHash(ctx, uuid.New(), "x"), ErrNotFound)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
