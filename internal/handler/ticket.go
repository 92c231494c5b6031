package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ukconnect/rail-booking/internal/engine"
)

// TicketHandler serves the read-only inventory endpoints.
type TicketHandler struct {
	Engine *engine.Engine
}

// NewTicketHandler returns a TicketHandler over the given engine.
func NewTicketHandler(e *engine.Engine) *TicketHandler { return &TicketHandler{Engine: e} }

// Search handles GET /v1/tickets/search.  From and to accept city names or
// exact station names; date is YYYY-MM-DD; max_price and class narrow the
// result further.
func (h *TicketHandler) Search(c echo.Context) error {
	fareClass := c.QueryParam("class")
	if fareClass == "" {
		fareClass = c.QueryParam("type")
	}
	criteria := engine.SearchCriteria{
		From:          strings.TrimSpace(c.QueryParam("from")),
		To:            strings.TrimSpace(c.QueryParam("to")),
		DepartureDate: strings.TrimSpace(c.QueryParam("date")),
		TicketType:    strings.ToLower(strings.TrimSpace(fareClass)),
	}
	if v := c.QueryParam("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   "validation",
				"message": "max_price must be a number",
			})
		}
		criteria.MaxPrice = p
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			criteria.Limit = n
		}
	}

	tickets, err := h.Engine.SearchTickets(c.Request().Context(), criteria)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  tickets,
		"count": len(tickets),
	})
}

// GetByID handles GET /v1/tickets/:id with schedule enrichment.
func (h *TicketHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation",
			"message": "ticket id must be an integer",
		})
	}
	detail, err := h.Engine.TicketDetails(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// TrainAvailability handles GET /v1/trains/:number/availability with
// optional date and carriage query parameters.
func (h *TicketHandler) TrainAvailability(c echo.Context) error {
	report, err := h.Engine.CheckSeatAvailability(c.Request().Context(),
		strings.ToUpper(strings.TrimSpace(c.Param("number"))),
		strings.TrimSpace(c.QueryParam("date")),
		strings.TrimSpace(c.QueryParam("carriage")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// RefundPolicy handles GET /v1/refund-policy/:type.
func (h *TicketHandler) RefundPolicy(c echo.Context) error {
	rules, err := h.Engine.RefundPolicy(c.Request().Context(),
		strings.ToLower(strings.TrimSpace(c.Param("type"))))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rules})
}
