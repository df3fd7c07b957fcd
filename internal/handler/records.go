package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jeevithdev/spotq/internal/model"
	"github.com/jeevithdev/spotq/internal/records"
	"github.com/jeevithdev/spotq/internal/repository"
	"github.com/jeevithdev/spotq/internal/response"
)

// RecordStore is the persistence a RecordHandler needs. repository.Store
// implements it for PostgreSQL.
type RecordStore[T any, P model.Record[T]] interface {
	List(ctx context.Context) ([]P, error)
	ListByDate(ctx context.Context, from, to model.Date) ([]P, error)
	Get(ctx context.Context, id uuid.UUID) (P, error)
	Create(ctx context.Context, rec P) error
	Update(ctx context.Context, id uuid.UUID, mutate func(P) error) (P, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Summary(ctx context.Context, from, to model.Date) ([]repository.SummaryRow, error)
}

// badRequest is a client error raised while decoding input.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

// RecordHandler serves the CRUD routes of one record kind.
type RecordHandler[T any, P model.Record[T]] struct {
	kind  records.Kind
	store RecordStore[T, P]
	log   zerolog.Logger
}

func NewRecordHandler[T any, P model.Record[T]](kind records.Kind, store RecordStore[T, P], log zerolog.Logger) *RecordHandler[T, P] {
	return &RecordHandler[T, P]{
		kind:  kind,
		store: store,
		log:   log.With().Str("kind", kind.Name).Logger(),
	}
}

// Register mounts the kind's routes on g.
func (h *RecordHandler[T, P]) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/filter", h.Filter)
	if h.kind.Summary != nil {
		g.GET("/summary", h.Summary)
	}
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List returns every record, newest first (GET /).
func (h *RecordHandler[T, P]) List(c echo.Context) error {
	list, err := h.store.List(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return response.List(c, list)
}

// Get returns one record (GET /:id).
func (h *RecordHandler[T, P]) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.fail(c, err)
	}
	rec, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return response.OK(c, rec, "")
}

// Create validates and stores a new record (POST /).
func (h *RecordHandler[T, P]) Create(c echo.Context) error {
	var rec T
	p := P(&rec)
	if err := decodeBody(c.Request().Body, p); err != nil {
		return h.fail(c, err)
	}
	*p.Metadata() = model.Meta{}
	if err := model.Validate(p); err != nil {
		return h.fail(c, err)
	}
	if err := h.store.Create(c.Request().Context(), p); err != nil {
		return h.fail(c, err)
	}
	h.log.Info().Str("id", p.Metadata().ID.String()).Msg("record created")
	return response.Created(c, p, h.kind.Title+" created successfully")
}

// Update merges a partial or full payload onto the stored record and
// re-validates it (PUT /:id).
func (h *RecordHandler[T, P]) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.fail(c, err)
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return h.fail(c, badRequest{"could not read request body"})
	}
	rec, err := h.store.Update(c.Request().Context(), id, func(p P) error {
		if err := decodeBody(bytes.NewReader(body), p); err != nil {
			return err
		}
		return model.Validate(p)
	})
	if err != nil {
		return h.fail(c, err)
	}
	h.log.Info().Str("id", id.String()).Msg("record updated")
	return response.OK(c, rec, h.kind.Title+" updated successfully")
}

// Delete removes one record (DELETE /:id).
func (h *RecordHandler[T, P]) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.store.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	h.log.Info().Str("id", id.String()).Msg("record deleted")
	return response.OK(c, nil, h.kind.Title+" deleted successfully")
}

// Filter lists records whose date lies in a range (GET /filter).
// Accepts ?date=YYYY-MM-DD or ?startDate=&endDate= (either bound optional).
func (h *RecordHandler[T, P]) Filter(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.store.ListByDate(c.Request().Context(), from, to)
	if err != nil {
		return h.fail(c, err)
	}
	return response.List(c, list)
}

// Summary returns grouped counts and totals (GET /summary).
func (h *RecordHandler[T, P]) Summary(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return h.fail(c, err)
	}
	rows, err := h.store.Summary(c.Request().Context(), from, to)
	if err != nil {
		return h.fail(c, err)
	}
	return response.List(c, rows)
}

// fail maps an error to its response. Client errors are logged at debug
// level, everything else is logged as an error and reported generically.
func (h *RecordHandler[T, P]) fail(c echo.Context, err error) error {
	var (
		verr *model.ValidationError
		dup  *repository.DuplicateError
		bad  badRequest
	)
	switch {
	case errors.As(err, &verr):
		h.log.Debug().Err(err).Msg("validation failed")
		return response.ValidationFailed(c, verr.Fields)
	case errors.As(err, &dup):
		h.log.Debug().Err(err).Msg("duplicate key")
		return c.JSON(http.StatusBadRequest, response.Envelope{
			Success: false,
			Message: fmt.Sprintf("%s %s already exists", h.kind.Title, dup.Field),
			Errors:  []model.FieldError{{Field: dup.Field, Message: "already exists"}},
		})
	case errors.Is(err, repository.ErrNotFound):
		return response.NotFound(c, h.kind.Title+" not found")
	case errors.As(err, &bad):
		return response.BadRequest(c, bad.msg)
	default:
		h.log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
		return response.InternalError(c)
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	if raw == "" {
		return uuid.Nil, badRequest{"missing id"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, badRequest{"invalid id: " + raw}
	}
	return id, nil
}

func decodeBody(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest{"request body is empty"}
		}
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typ) && typ.Field != "":
			return &model.ValidationError{Fields: []model.FieldError{model.TypeFieldError(typ)}}
		case errors.As(err, &typ):
			return badRequest{"request body must be a JSON object"}
		case errors.As(err, &syn), errors.Is(err, io.ErrUnexpectedEOF):
			return badRequest{"invalid JSON body"}
		default:
			return badRequest{"invalid JSON body: " + err.Error()}
		}
	}
	return nil
}

func dateRange(c echo.Context) (from, to model.Date, err error) {
	if d := c.QueryParam("date"); d != "" {
		day, err := model.ParseDate(d)
		if err != nil {
			return from, to, badRequest{err.Error()}
		}
		return day, day, nil
	}
	if s := c.QueryParam("startDate"); s != "" {
		if from, err = model.ParseDate(s); err != nil {
			return from, to, badRequest{err.Error()}
		}
	}
	if s := c.QueryParam("endDate"); s != "" {
		if to, err = model.ParseDate(s); err != nil {
			return from, to, badRequest{err.Error()}
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from.Time) {
		return from, to, badRequest{"endDate must not be before startDate"}
	}
	return from, to, nil
}
