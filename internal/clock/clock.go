// Package clock supplies the notion of "current time" to all date-relative
// logic in the booking engine.  Production wiring uses the wall clock; tests
// and demo sessions inject a fixed instant so that ticket departures, refund
// tiers and transaction windows are deterministic.
package clock

import "time"

// Layout is the timestamp layout used across the database and configuration.
const Layout = "2006-01-02 15:04:05"

// Clock returns the current time.  Implementations must be safe for
// concurrent use.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Real returns a Clock backed by the wall clock.  Times are reported in UTC.
func Real() Clock { return realClock{} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

// Fixed returns a Clock frozen at the given instant.
func Fixed(t time.Time) Clock { return fixedClock{t: t.UTC()} }

// FromEnv builds a Clock from the SYSTEM_TIME configuration value.  An empty
// value selects the wall clock; otherwise the value must be in Layout form
// (e.g. "2025-07-29 14:30:00") and selects a fixed clock at that instant.
func FromEnv(value string) (Clock, error) {
	if value == "" {
		return Real(), nil
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return nil, err
	}
	return Fixed(t), nil
}
