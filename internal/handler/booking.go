package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/engine"
	"github.com/ukconnect/rail-booking/internal/queue"
	publisher "github.com/ukconnect/rail-booking/internal/service"
)

// BookingHandler serves the booking and refund endpoints.  Events describe
// committed state, so they are published only after the engine returns
// success; publish failures are logged by the publisher and never fail the
// request.
type BookingHandler struct {
	Engine        *engine.Engine
	PublishEvents bool
}

// NewBookingHandler returns a BookingHandler over the given engine.
func NewBookingHandler(e *engine.Engine, publishEvents bool) *BookingHandler {
	return &BookingHandler{Engine: e, PublishEvents: publishEvents}
}

type createBookingRequest struct {
	CustomerEmail string `json:"customer_email"`
	TicketID      int64  `json:"ticket_id"`
	PaymentMethod string `json:"payment_method"`
}

// Create handles POST /v1/bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation",
			"message": "invalid request body",
		})
	}

	confirmation, err := h.Engine.BookTicket(c.Request().Context(), req.CustomerEmail, req.TicketID, req.PaymentMethod)
	if err != nil {
		return fail(c, err)
	}

	if h.PublishEvents {
		go func(conf engine.BookingConfirmation) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
				BookingReference: conf.BookingReference,
				CustomerRef:      conf.CustomerReference,
				TrainNumber:      conf.Trip.TrainNumber,
				FromStation:      conf.Trip.FromStation,
				ToStation:        conf.Trip.ToStation,
				DepartureTime:    conf.Trip.DepartureTime.Format(clock.Layout),
				SeatNumber:       conf.Trip.SeatNumber,
				Carriage:         conf.Trip.Carriage,
				TicketType:       conf.Trip.TicketType,
				PaidPrice:        conf.PaidPrice,
				PaymentMethod:    conf.PaymentMethod,
				ConfirmedAt:      conf.Trip.PurchaseTime.Format(clock.Layout),
			})
		}(*confirmation)
	}

	return c.JSON(http.StatusCreated, confirmation)
}

// RefundQuote handles GET /v1/bookings/:reference/refund-quote.  Pure read:
// quoting a refund commits the caller to nothing.
func (h *BookingHandler) RefundQuote(c echo.Context) error {
	quote, err := h.Engine.CalculateRefund(c.Request().Context(), bookingRef(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

type refundRequest struct {
	Reason string `json:"reason"`
}

// Refund handles POST /v1/bookings/:reference/refund.
func (h *BookingHandler) Refund(c echo.Context) error {
	ref := bookingRef(c)

	var req refundRequest
	if err := c.Bind(&req); err != nil && c.Request().ContentLength > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "validation",
			"message": "invalid request body",
		})
	}

	result, err := h.Engine.RefundTicket(c.Request().Context(), ref, strings.TrimSpace(req.Reason))
	if err != nil {
		return fail(c, err)
	}

	if h.PublishEvents {
		go func(res engine.RefundResult, reason string) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = publisher.PublishTicketRefunded(ctx, queue.TicketRefundedEvent{
				BookingReference: res.BookingReference,
				TrainNumber:      res.Trip.TrainNumber,
				FromStation:      res.Trip.FromStation,
				ToStation:        res.Trip.ToStation,
				DepartureTime:    res.Trip.DepartureTime.Format(clock.Layout),
				TicketType:       res.Trip.TicketType,
				RefundAmount:     res.RefundAmount,
				RefundPercentage: res.RefundPercentage,
				NewTicketID:      res.NewTicketID,
				Reason:           reason,
				RefundedAt:       h.Engine.Now().Format(clock.Layout),
			})
		}(*result, strings.TrimSpace(req.Reason))
	}

	return c.JSON(http.StatusOK, result)
}

// History handles GET /v1/bookings/:reference/history.
func (h *BookingHandler) History(c echo.Context) error {
	entries, err := h.Engine.BookingHistory(c.Request().Context(), bookingRef(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": entries})
}

func bookingRef(c echo.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("reference")))
}
