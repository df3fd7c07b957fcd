package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jeevithdev/spotq/internal/model"
)

// Envelope is the shape of every API response.
type Envelope struct {
	Success bool               `json:"success"`
	Data    any                `json:"data,omitempty"`
	Count   *int               `json:"count,omitempty"`
	Message string             `json:"message,omitempty"`
	Errors  []model.FieldError `json:"errors,omitempty"`
}

// OK sends a 200 response with data.
func OK(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// List sends a 200 response with a list and its length.
func List[T any](c echo.Context, items []T) error {
	n := len(items)
	if items == nil {
		items = []T{}
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

// Created sends a 201 response with data.
func Created(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Error sends an unsuccessful envelope with the given status.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

// BadRequest sends 400 with a message.
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// ValidationFailed sends 400 listing each violated field.
func ValidationFailed(c echo.Context, fields []model.FieldError) error {
	return c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  fields,
	})
}

// NotFound sends 404 with a message.
func NotFound(c echo.Context, message string) error {
	return Error(c, http.StatusNotFound, message)
}

// InternalError sends 500 with a generic message; details belong in the log.
func InternalError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "Server error")
}
