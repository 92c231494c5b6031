// Package handler contains the Echo HTTP handlers for the booking API.
// Handlers translate HTTP to engine calls and engine error kinds back to
// status codes; every business rule lives in the engine.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ukconnect/rail-booking/internal/engine"
)

// statusFor maps an engine error kind onto an HTTP status code.
func statusFor(kind engine.Kind) int {
	switch kind {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindConflict:
		return http.StatusConflict
	case engine.KindInvalidState, engine.KindPolicyGap:
		return http.StatusUnprocessableEntity
	case engine.KindResourceExhaustion:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the standard error envelope for an engine failure.
func fail(c echo.Context, err error) error {
	kind := engine.KindOf(err)
	msg := err.Error()
	if kind == engine.KindStorage {
		// Storage details stay in the server log, not the response.
		c.Logger().Errorf("storage error: %v", err)
		msg = "internal error"
	}
	return c.JSON(statusFor(kind), echo.Map{
		"error":   string(kind),
		"message": msg,
	})
}
