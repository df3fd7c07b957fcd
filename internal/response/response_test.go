package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeevithdev/spotq/internal/model"
)

func run(t *testing.T, fn func(c echo.Context) error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, fn(c))
	return rec
}

func TestEnvelopes(t *testing.T) {
	rec := run(t, func(c echo.Context) error { return List[string](c, nil) })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[],"count":0}`, rec.Body.String())

	rec = run(t, func(c echo.Context) error { return Created(c, map[string]int{"a": 1}, "created") })
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"a":1},"message":"created"}`, rec.Body.String())

	rec = run(t, func(c echo.Context) error {
		return ValidationFailed(c, []model.FieldError{{Field: "partName", Message: "is required"}})
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Validation failed","errors":[{"field":"partName","message":"is required"}]}`, rec.Body.String())

	rec = run(t, InternalError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server error"}`, rec.Body.String())
}
