package database

import (
	"context"
	"database/sql"
)

// schemaStatements creates the seven persisted tables.  Statements are
// idempotent so EnsureSchema can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customer_info (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id VARCHAR(6) NOT NULL UNIQUE,
		name VARCHAR(100) NOT NULL,
		address TEXT NOT NULL,
		email VARCHAR(150) NOT NULL UNIQUE,
		phone VARCHAR(20) NOT NULL,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS available_tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		train_number VARCHAR(20) NOT NULL,
		from_station VARCHAR(100) NOT NULL,
		to_station VARCHAR(100) NOT NULL,
		departure_time TEXT NOT NULL,
		arrival_time TEXT NOT NULL,
		seat_number VARCHAR(10) NOT NULL,
		carriage VARCHAR(10) NOT NULL,
		ticket_type VARCHAR(20) NOT NULL CHECK (ticket_type IN ('standard', 'flexible', 'first_class')),
		base_price DECIMAL(10,2) NOT NULL,
		current_price DECIMAL(10,2) NOT NULL,
		availability_status VARCHAR(20) NOT NULL DEFAULT 'available' CHECK (availability_status IN ('available', 'sold')),
		booking_class VARCHAR(20) NOT NULL CHECK (booking_class IN ('economy', 'standard', 'first_class')),
		amenities TEXT,
		route_distance_km INTEGER,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS booked_tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_reference VARCHAR(10) NOT NULL UNIQUE,
		customer_id INTEGER NOT NULL,
		original_available_ticket_id INTEGER,
		train_number VARCHAR(20) NOT NULL,
		from_station VARCHAR(100) NOT NULL,
		to_station VARCHAR(100) NOT NULL,
		departure_time TEXT NOT NULL,
		estimated_arrival_time TEXT NOT NULL,
		seat_number VARCHAR(10) NOT NULL,
		carriage VARCHAR(10) NOT NULL,
		ticket_type VARCHAR(20) NOT NULL CHECK (ticket_type IN ('standard', 'flexible', 'first_class')),
		original_price DECIMAL(10,2) NOT NULL,
		paid_price DECIMAL(10,2) NOT NULL,
		booking_status VARCHAR(20) NOT NULL CHECK (booking_status IN ('confirmed', 'cancelled', 'refunded', 'used')),
		travel_status VARCHAR(20) NOT NULL DEFAULT 'upcoming' CHECK (travel_status IN ('upcoming', 'in_progress', 'completed', 'missed', 'cancelled')),
		purchase_date TEXT NOT NULL,
		special_requirements TEXT,
		loyalty_points_earned INTEGER DEFAULT 0,
		loyalty_points_used INTEGER DEFAULT 0,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (customer_id) REFERENCES customer_info (id) ON DELETE CASCADE,
		FOREIGN KEY (original_available_ticket_id) REFERENCES available_tickets (id)
	)`,

	`CREATE TABLE IF NOT EXISTS transaction_info (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL,
		customer_reference VARCHAR(6),
		booked_ticket_id INTEGER,
		booking_reference VARCHAR(10),
		transaction_type VARCHAR(20) NOT NULL CHECK (transaction_type IN ('purchase', 'refund')),
		amount DECIMAL(10,2) NOT NULL,
		payment_method VARCHAR(30) NOT NULL CHECK (payment_method IN ('credit_card', 'debit_card', 'paypal', 'bank_transfer', 'voucher', 'apple_pay', 'google_pay', 'loyalty_points', 'corporate_account')),
		transaction_time TEXT NOT NULL,
		status VARCHAR(20) NOT NULL CHECK (status IN ('completed', 'pending', 'failed')),
		reference_number VARCHAR(50),
		payment_processor VARCHAR(30),
		currency VARCHAR(3) DEFAULT 'GBP',
		processing_fee DECIMAL(10,2) DEFAULT 0.00,
		notes TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (customer_id) REFERENCES customer_info (id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS refund_rules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_type VARCHAR(20) NOT NULL,
		hours_before_departure INTEGER NOT NULL,
		refund_percentage INTEGER NOT NULL CHECK (refund_percentage >= 0 AND refund_percentage <= 100),
		cancellation_fee DECIMAL(10,2) DEFAULT 0.00,
		is_active BOOLEAN DEFAULT 1,
		rule_description TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS train_schedules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		train_number VARCHAR(20) NOT NULL,
		service_name VARCHAR(100),
		operator VARCHAR(50) NOT NULL,
		from_station VARCHAR(100) NOT NULL,
		to_station VARCHAR(100) NOT NULL,
		departure_time TIME NOT NULL,
		arrival_time TIME NOT NULL,
		journey_duration INTEGER NOT NULL,
		distance_km INTEGER,
		operating_days VARCHAR(20) NOT NULL,
		max_capacity INTEGER NOT NULL,
		first_class_capacity INTEGER DEFAULT 0,
		standard_class_capacity INTEGER NOT NULL,
		has_wifi BOOLEAN DEFAULT 0,
		has_catering BOOLEAN DEFAULT 0,
		has_power_sockets BOOLEAN DEFAULT 0,
		service_status VARCHAR(20) DEFAULT 'active' CHECK (service_status IN ('active', 'suspended', 'cancelled', 'delayed')),
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS booking_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		booked_ticket_id INTEGER NOT NULL,
		action VARCHAR(30) NOT NULL,
		old_status VARCHAR(20),
		new_status VARCHAR(20),
		changed_fields TEXT,
		reason TEXT,
		changed_by VARCHAR(20) DEFAULT 'customer',
		change_timestamp TEXT DEFAULT CURRENT_TIMESTAMP,
		notes TEXT
	)`,
}

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_customer_email ON customer_info (email)`,
	`CREATE INDEX IF NOT EXISTS idx_avail_departure ON available_tickets (departure_time)`,
	`CREATE INDEX IF NOT EXISTS idx_avail_route ON available_tickets (from_station, to_station)`,
	`CREATE INDEX IF NOT EXISTS idx_avail_status ON available_tickets (availability_status)`,
	`CREATE INDEX IF NOT EXISTS idx_avail_train ON available_tickets (train_number)`,
	`CREATE INDEX IF NOT EXISTS idx_avail_price ON available_tickets (current_price)`,
	`CREATE INDEX IF NOT EXISTS idx_booked_booking_ref ON booked_tickets (booking_reference)`,
	`CREATE INDEX IF NOT EXISTS idx_booked_customer_id ON booked_tickets (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_booked_departure ON booked_tickets (departure_time)`,
	`CREATE INDEX IF NOT EXISTS idx_booked_status ON booked_tickets (booking_status)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_customer ON transaction_info (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_booking_ref ON transaction_info (booking_reference)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_time ON transaction_info (transaction_time)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_train ON train_schedules (train_number)`,
	`CREATE INDEX IF NOT EXISTS idx_history_ticket ON booking_history (booked_ticket_id)`,
	`CREATE INDEX IF NOT EXISTS idx_history_timestamp ON booking_history (change_timestamp)`,
}

// refundRuleSeed is the standing refund policy.  Tiers per fare class are
// keyed by the minimum hours before departure at which they apply:
// flexible fares refund in full at any time; standard and first class step
// down from 100% (≥24h) through 75% (4–24h, £25/£50 fee) to 50% (<4h,
// £50/£75 fee).
var refundRuleSeed = []struct {
	ticketType  string
	hours       int
	percentage  int
	fee         float64
	description string
}{
	{"flexible", 0, 100, 0.00, "Flexible fares - full refund without fees anytime"},
	{"standard", 24, 100, 0.00, "Standard fares - full refund 24+ hours before departure"},
	{"standard", 4, 75, 25.00, "Standard fares - 75% refund 4-24 hours before departure"},
	{"standard", 0, 50, 50.00, "Standard fares - 50% refund less than 4 hours before departure"},
	{"first_class", 24, 100, 0.00, "First class fares - full refund 24+ hours before departure"},
	{"first_class", 4, 75, 50.00, "First class fares - 75% refund 4-24 hours before departure"},
	{"first_class", 0, 50, 75.00, "First class fares - 50% refund less than 4 hours before departure"},
}

// EnsureSchema creates all tables and indexes and seeds the refund rule
// table when it is empty.  It is safe to call on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range indexStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return seedRefundRules(ctx, db)
}

func seedRefundRules(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM refund_rules`).Scan(&count); err != nil {
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
	const q = `INSERT INTO refund_rules (ticket_type, hours_before_departure, refund_percentage, cancellation_fee, is_active, rule_description)
	           VALUES (?, ?, ?, ?, 1, ?)`
	for _, r := range refundRuleSeed {
		if _, err := tx.ExecContext(ctx, q, r.ticketType, r.hours, r.percentage, r.fee, r.description); err != nil {
			return err
		}
	}
	return tx.Commit()
}
