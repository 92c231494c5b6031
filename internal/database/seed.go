package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ukconnect/rail-booking/internal/clock"
)

// Demo fixtures for local runs and interactive agent sessions.  Inventory is
// generated relative to the supplied "now" so that seeded departures are
// always bookable regardless of when the server starts.

type seedCustomer struct {
	ref, name, address, email, phone string
}

var seedCustomers = []seedCustomer{
	{"CUS001", "James Thompson", "45 Baker Street, London W1U 8EW", "james.thompson@email.com", "+44 7700 900123"},
	{"CUS002", "Sarah Williams", "12 Deansgate, Manchester M3 2BW", "sarah.williams@email.com", "+44 7700 900234"},
	{"CUS003", "David Brown", "78 Colmore Row, Birmingham B3 2AP", "david.brown@email.com", "+44 7700 900345"},
	{"CUS004", "Emma Davis", "23 Princes Street, Edinburgh EH2 2AN", "emma.davis@email.com", "+44 7700 900456"},
	{"CUS005", "Michael Wilson", "56 Bold Street, Liverpool L1 4EA", "michael.wilson@email.com", "+44 7700 900567"},
}

type seedSchedule struct {
	train, service, operator, from, to string
	depart, arrive                     string
	minutes, distance                  int
	capacity, firstClass, standard     int
	wifi, catering, power              bool
}

var seedSchedules = []seedSchedule{
	{"UK101", "Manchester Express", "UKConnect", "London Euston", "Manchester Piccadilly", "08:00", "10:08", 128, 296, 400, 60, 340, true, true, true},
	{"UK102", "Manchester Express", "UKConnect", "London Euston", "Manchester Piccadilly", "10:30", "12:38", 128, 296, 400, 60, 340, true, true, true},
	{"UK201", "Scotland Flyer", "UKConnect", "London King's Cross", "Edinburgh Waverley", "09:00", "13:20", 260, 650, 500, 80, 420, true, true, true},
	{"UK301", "West Country Service", "UKConnect", "London Paddington", "Bristol Temple Meads", "07:30", "09:15", 105, 190, 350, 40, 310, true, false, true},
	{"UK401", "Midlands Connect", "UKConnect", "Birmingham New Street", "London Euston", "08:15", "09:40", 85, 180, 380, 50, 330, true, false, true},
}

// routeClasses drives inventory generation: each schedule gets a few seats
// per fare class at route-specific prices.
var routeClasses = []struct {
	ticketType   string
	bookingClass string
	carriage     string
	seats        []string
	priceFactor  float64
}{
	{"standard", "standard", "3", []string{"12A", "12B", "14C", "15A"}, 1.0},
	{"flexible", "standard", "2", []string{"8A", "8B", "9C"}, 1.35},
	{"first_class", "first_class", "1", []string{"2A", "2B"}, 2.1},
}

// Seed inserts demo customers, schedules and inventory when the customer
// table is empty.  Departures are placed on the days following now's date.
func Seed(ctx context.Context, db *sql.DB, clk clock.Clock) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customer_info`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range seedCustomers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO customer_info (customer_id, name, address, email, phone) VALUES (?, ?, ?, ?, ?)`,
			c.ref, c.name, c.address, c.email, c.phone); err != nil {
			return err
		}
	}

	for _, s := range seedSchedules {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO train_schedules (train_number, service_name, operator, from_station, to_station,
			   departure_time, arrival_time, journey_duration, distance_km, operating_days,
			   max_capacity, first_class_capacity, standard_class_capacity, has_wifi, has_catering, has_power_sockets)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'Daily', ?, ?, ?, ?, ?, ?)`,
			s.train, s.service, s.operator, s.from, s.to,
			s.depart, s.arrive, s.minutes, s.distance,
			s.capacity, s.firstClass, s.standard, s.wifi, s.catering, s.power); err != nil {
			return err
		}
	}

	// Inventory for the next three days per schedule and fare class.
	now := clk.Now()
	basePrice := map[string]float64{"UK101": 67.50, "UK102": 67.50, "UK201": 120.00, "UK301": 45.00, "UK401": 38.50}
	for day := 1; day <= 3; day++ {
		date := now.AddDate(0, 0, day)
		for _, s := range seedSchedules {
			depart, err := combineDateTime(date, s.depart)
			if err != nil {
				return err
			}
			arrive := depart.Add(time.Duration(s.minutes) * time.Minute)
			for _, rc := range routeClasses {
				price := roundPrice(basePrice[s.train] * rc.priceFactor)
				for _, seat := range rc.seats {
					if _, err := tx.ExecContext(ctx,
						`INSERT INTO available_tickets (train_number, from_station, to_station, departure_time, arrival_time,
						   seat_number, carriage, ticket_type, base_price, current_price, availability_status,
						   booking_class, amenities, route_distance_km)
						 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'available', ?, ?, ?)`,
						s.train, s.from, s.to,
						depart.Format(clock.Layout), arrive.Format(clock.Layout),
						seat, rc.carriage, rc.ticketType, price, price,
						rc.bookingClass, `{"wifi": true, "power": true}`, s.distance); err != nil {
						return err
					}
				}
			}
		}
	}

	return tx.Commit()
}

func combineDateTime(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad schedule time %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func roundPrice(p float64) float64 {
	return float64(int(p*100+0.5)) / 100
}
