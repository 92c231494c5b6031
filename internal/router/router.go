// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ukconnect/rail-booking/internal/config"
	"github.com/ukconnect/rail-booking/internal/handler"
	"github.com/ukconnect/rail-booking/internal/middleware"
)

// Handlers bundles the handler set the router registers.
type Handlers struct {
	Tickets   *handler.TicketHandler
	Bookings  *handler.BookingHandler
	Customers *handler.CustomerHandler
	Locations *handler.LocationHandler
}

// Register mounts all routes on the Echo instance.  The read-only search
// surface goes behind the Redis response cache; everything under /v1 is
// rate limited.  Both middlewares degrade to pass-through when rdb is nil.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	cached := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	// Inventory reads.  Cached: inventory changes on every booking but a
	// briefly stale search only costs the buyer one conflict error.
	v1.GET("/tickets/search", h.Tickets.Search, cached)
	v1.GET("/tickets/:id", h.Tickets.GetByID)
	v1.GET("/trains/:number/availability", h.Tickets.TrainAvailability, cached)
	v1.GET("/refund-policy/:type", h.Tickets.RefundPolicy, cached)

	// Booking lifecycle.  Never cached.
	v1.POST("/bookings", h.Bookings.Create)
	v1.GET("/bookings/:reference/refund-quote", h.Bookings.RefundQuote)
	v1.POST("/bookings/:reference/refund", h.Bookings.Refund)
	v1.GET("/bookings/:reference/history", h.Bookings.History)

	// Customer portfolio reads.
	v1.GET("/customers/:email/bookings", h.Customers.Bookings)
	v1.GET("/customers/:email/tickets", h.Customers.Tickets)
	v1.GET("/customers/:email/transactions", h.Customers.Transactions)

	// Static location lookups.
	v1.GET("/locations/suggestions", h.Locations.Suggestions, cached)
}
