package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ukconnect/rail-booking/internal/location"
)

// LocationHandler serves station and city lookups backed by the static
// city-station mapping.
type LocationHandler struct {
	Resolver *location.Resolver
}

// NewLocationHandler returns a LocationHandler over the given resolver.
func NewLocationHandler(r *location.Resolver) *LocationHandler {
	return &LocationHandler{Resolver: r}
}

// Suggestions handles GET /v1/locations/suggestions?q=...  It returns
// cities and stations whose names contain the query, for typeahead use.
func (h *LocationHandler) Suggestions(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation",
			"message": "query parameter q is required",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": h.Resolver.Suggest(q),
	})
}
