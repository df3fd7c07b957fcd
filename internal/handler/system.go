package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/database"
	"github.com/jeevithdev/spotq/internal/records"
	"github.com/jeevithdev/spotq/internal/response"
	"github.com/jeevithdev/spotq/internal/storage"
)

// DatabaseStatus is the part of database.Database the system routes use.
type DatabaseStatus interface {
	Health(ctx context.Context) (database.HealthStatus, error)
	Stats(ctx context.Context, collections []string) ([]database.CollectionStats, error)
}

// SnapshotLister lists backup snapshots. A nil *storage.Archive satisfies it
// and reports storage.ErrNotConfigured.
type SnapshotLister interface {
	List(ctx context.Context, collection string) ([]storage.ObjectInfo, error)
}

// SystemHandler handles health, record type descriptions and maintenance
// read-outs.
type SystemHandler struct {
	Registry  *records.Registry
	DB        DatabaseStatus
	Snapshots SnapshotLister
	Log       zerolog.Logger
	Started   time.Time
}

type healthResponse struct {
	Status   string                `json:"status"`
	Uptime   string                `json:"uptime"`
	Database database.HealthStatus `json:"database"`
}

// Health reports service and database status (GET /api/health). Returns 503
// when the database does not answer a ping.
func (h *SystemHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Uptime: time.Since(h.Started).Round(time.Second).String()}
	db, err := h.DB.Health(ctx)
	resp.Database = db
	if err != nil {
		h.Log.Warn().Err(err).Msg("health check: database ping failed")
		resp.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable, response.Envelope{Success: false, Data: resp, Message: "Database unavailable"})
	}
	return response.OK(c, resp, "")
}

// Types lists every record kind with its fields (GET /types).
func (h *SystemHandler) Types(c echo.Context) error {
	return response.List(c, h.Registry.AllTypeInfo())
}

// Type describes one record kind (GET /types/:kind).
func (h *SystemHandler) Type(c echo.Context) error {
	name := c.Param("kind")
	info, ok := h.Registry.TypeInfo(name)
	if !ok {
		return response.NotFound(c, "unknown record type: "+name)
	}
	return response.OK(c, info, "")
}

// Stats reports document counts and sizes per collection (GET /system/stats).
func (h *SystemHandler) Stats(c echo.Context) error {
	stats, err := h.DB.Stats(c.Request().Context(), h.collections())
	if err != nil {
		h.Log.Error().Err(err).Msg("collection stats")
		return response.InternalError(c)
	}
	return response.List(c, stats)
}

// Backups lists stored snapshots, optionally for one ?kind= (GET /system/backups).
func (h *SystemHandler) Backups(c echo.Context) error {
	collection := ""
	if name := c.QueryParam("kind"); name != "" {
		kind, ok := h.Registry.Get(name)
		if !ok {
			return response.NotFound(c, "unknown record type: "+name)
		}
		collection = kind.Collection
	}
	list, err := h.Snapshots.List(c.Request().Context(), collection)
	if errors.Is(err, storage.ErrNotConfigured) {
		return c.JSON(http.StatusOK, response.Envelope{Success: true, Data: []storage.ObjectInfo{}, Message: "Backup storage not configured"})
	}
	if err != nil {
		h.Log.Error().Err(err).Msg("list backups")
		return response.InternalError(c)
	}
	return response.List(c, list)
}

func (h *SystemHandler) collections() []string {
	names := h.Registry.Names()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if k, ok := h.Registry.Get(n); ok {
			out = append(out, k.Collection)
		}
	}
	return out
}
