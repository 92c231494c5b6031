// Package config loads application settings from environment variables.
// Every knob has a default suitable for local development; production
// deployments override via the environment (.env is honored at startup).
package config

import (
	"fmt"

	"github.com/ukconnect/rail-booking/internal/clock"
)

// App is the top-level application configuration.
type App struct {
	Env  string // "development" or "production"
	Port string // HTTP listen port

	DBPath string // SQLite database file path

	// SystemTime pins the engine clock to a fixed instant when set
	// ("2006-01-02 15:04:05").  Empty means wall-clock time.  Demo and
	// test environments pin the clock so seeded departures stay in the
	// future.
	SystemTime string

	// SeedData loads demo customers, schedules and inventory on startup.
	SeedData bool

	// AMQPURL enables the booking event publisher when non-empty.
	AMQPURL string

	// EventLogPath is where the queue consumer appends booking events.
	EventLogPath string
}

// Load builds an App from the environment.
func Load() App {
	return App{
		Env:          getenv("APP_ENV", "development"),
		Port:         getenv("PORT", "8080"),
		DBPath:       getenv("DB_PATH", "rail_booking.db"),
		SystemTime:   getenv("SYSTEM_TIME", ""),
		SeedData:     envBool("SEED_DATA", true),
		AMQPURL:      getenv("AMQP_URL", ""),
		EventLogPath: getenv("EVENT_LOG_PATH", "logs/booking.log"),
	}
}

// Clock derives the engine clock from SystemTime.
func (a App) Clock() (clock.Clock, error) {
	clk, err := clock.FromEnv(a.SystemTime)
	if err != nil {
		return nil, fmt.Errorf("config: invalid SYSTEM_TIME %q: %w", a.SystemTime, err)
	}
	return clk, nil
}

// Addr is the listen address for the HTTP server.
func (a App) Addr() string { return ":" + a.Port }
