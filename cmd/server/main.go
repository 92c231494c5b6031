package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ukconnect/rail-booking/internal/config"
	"github.com/ukconnect/rail-booking/internal/database"
	"github.com/ukconnect/rail-booking/internal/engine"
	"github.com/ukconnect/rail-booking/internal/handler"
	"github.com/ukconnect/rail-booking/internal/location"
	"github.com/ukconnect/rail-booking/internal/queue"
	"github.com/ukconnect/rail-booking/internal/router"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	clk, err := cfg.Clock()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if cfg.SeedData {
		if err := database.Seed(ctx, db, clk); err != nil {
			log.Fatalf("seed data: %v", err)
		}
	}

	resolver := location.NewResolver()
	eng := engine.New(db, clk, resolver)

	// Optional infrastructure: nil Redis disables caching and rate
	// limiting, no AMQP URL disables event publishing and the consumer.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Print("redis unavailable; response cache and rate limiting disabled")
	}
	publishEvents := cfg.AMQPURL != ""
	if publishEvents {
		go func() {
			if err := queue.StartEventConsumer(cfg.EventLogPath); err != nil {
				log.Printf("event consumer stopped: %v", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Tickets:   handler.NewTicketHandler(eng),
		Bookings:  handler.NewBookingHandler(eng, publishEvents),
		Customers: handler.NewCustomerHandler(eng),
		Locations: handler.NewLocationHandler(resolver),
	}, rdb)

	log.Printf("listening on %s (env=%s, db=%s)", cfg.Addr(), cfg.Env, cfg.DBPath)
	if err := e.Start(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
