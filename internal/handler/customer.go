package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ukconnect/rail-booking/internal/engine"
)

// CustomerHandler serves the per-customer read endpoints.
type CustomerHandler struct {
	Engine *engine.Engine
}

// NewCustomerHandler returns a CustomerHandler over the given engine.
func NewCustomerHandler(e *engine.Engine) *CustomerHandler { return &CustomerHandler{Engine: e} }

// Bookings handles GET /v1/customers/:email/bookings.
func (h *CustomerHandler) Bookings(c echo.Context) error {
	portfolio, err := h.Engine.GetCustomerBookings(c.Request().Context(), customerEmail(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, portfolio)
}

// Tickets handles GET /v1/customers/:email/tickets — upcoming confirmed
// bookings only.
func (h *CustomerHandler) Tickets(c echo.Context) error {
	tickets, err := h.Engine.ActiveTickets(c.Request().Context(), customerEmail(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  tickets,
		"count": len(tickets),
	})
}

// Transactions handles GET /v1/customers/:email/transactions with optional
// days and limit query parameters.
func (h *CustomerHandler) Transactions(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 50
	}

	txns, err := h.Engine.RecentTransactions(c.Request().Context(), customerEmail(c), days, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  txns,
		"count": len(txns),
	})
}

func customerEmail(c echo.Context) string {
	return strings.TrimSpace(c.Param("email"))
}
