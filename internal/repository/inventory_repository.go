package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ukconnect/rail-booking/internal/clock"
	"github.com/ukconnect/rail-booking/internal/model"
)

// InventoryRepo provides access to the available_tickets table: filtered
// search over unsold inventory, the atomic available→sold transition that
// prevents double-booking, and reissue inserts driven by the refund flow.
type InventoryRepo struct {
	db *sql.DB
}

// NewInventoryRepo returns an InventoryRepo bound to the given database.
func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const ticketColumns = `id, train_number, from_station, to_station, departure_time, arrival_time,
	seat_number, carriage, ticket_type, base_price, current_price, availability_status,
	booking_class, COALESCE(amenities, ''), COALESCE(route_distance_km, 0)`

// SearchFilter narrows an inventory search.  Station slices use OR
// semantics across their entries (a city resolves to several stations);
// every other populated field must match exactly.  DepartAfter is always
// set by the engine to "now" or the requested date, whichever is later.
type SearchFilter struct {
	FromStations []string
	ToStations   []string
	DepartAfter  time.Time
	DepartBefore time.Time // zero means unbounded
	TicketType   string
	MaxPrice     float64
	Limit        int
}

// Search returns available tickets departing strictly after
// filter.DepartAfter that match all populated filters, ordered by departure
// time then current price.  No matches yields an empty slice, never an
// error.
func (r *InventoryRepo) Search(ctx context.Context, filter SearchFilter) ([]model.AvailableTicket, error) {
	where := []string{"availability_status = 'available'", "departure_time > ?"}
	args := []any{filter.DepartAfter.UTC().Format(clock.Layout)}

	if !filter.DepartBefore.IsZero() {
		where = append(where, "departure_time < ?")
		args = append(args, filter.DepartBefore.UTC().Format(clock.Layout))
	}
	if len(filter.FromStations) > 0 {
		where = append(where, "from_station IN ("+placeholders(len(filter.FromStations))+")")
		for _, s := range filter.FromStations {
			args = append(args, s)
		}
	}
	if len(filter.ToStations) > 0 {
		where = append(where, "to_station IN ("+placeholders(len(filter.ToStations))+")")
		for _, s := range filter.ToStations {
			args = append(args, s)
		}
	}
	if filter.TicketType != "" {
		where = append(where, "ticket_type = ?")
		args = append(args, filter.TicketType)
	}
	if filter.MaxPrice > 0 {
		where = append(where, "current_price <= ?")
		args = append(args, filter.MaxPrice)
	}

	query := `SELECT ` + ticketColumns + ` FROM available_tickets
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY departure_time ASC, current_price ASC`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AvailableTicket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID loads a single inventory ticket regardless of its availability
// status.  Returns ErrTicketNotFound when the id does not exist.
func (r *InventoryRepo) GetByID(ctx context.Context, id int64) (*model.AvailableTicket, error) {
	return getTicket(ctx, r.db, id)
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *InventoryRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*model.AvailableTicket, error) {
	return getTicket(ctx, tx, id)
}

// MarkSoldTx transitions a ticket from available to sold within the given
// transaction.  The conditional UPDATE is the race arbiter: under
// concurrent callers exactly one observes an affected row; the rest get
// ErrTicketSold (or ErrTicketNotFound when the id never existed).
func (r *InventoryRepo) MarkSoldTx(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE available_tickets
		 SET availability_status = 'sold', updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND availability_status = 'available'`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var status string
	err = tx.QueryRowContext(ctx, `SELECT availability_status FROM available_tickets WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrTicketNotFound
	}
	if err != nil {
		return err
	}
	return ErrTicketSold
}

// InsertTx inserts a new inventory row and returns its id.  Used by the
// refund flow to reissue a refunded booking's seat for resale; the new row
// always gets a fresh id, the original sold row is never resurrected.
func (r *InventoryRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.AvailableTicket) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO available_tickets (train_number, from_station, to_station, departure_time, arrival_time,
		   seat_number, carriage, ticket_type, base_price, current_price, availability_status,
		   booking_class, amenities, route_distance_km)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TrainNumber, t.FromStation, t.ToStation,
		t.DepartureTime.UTC().Format(clock.Layout), t.ArrivalTime.UTC().Format(clock.Layout),
		t.SeatNumber, t.Carriage, t.TicketType, t.BasePrice, t.CurrentPrice, t.AvailabilityStatus,
		t.BookingClass, nullable(t.Amenities), t.RouteDistanceKM)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CarriageAvailability is one row of a per-carriage seat count for a train
// on a given date.
type CarriageAvailability struct {
	Carriage   string `json:"carriage"`
	TicketType string `json:"ticket_type"`
	Seats      int    `json:"available_seats"`
}

// AvailabilityByTrain counts available seats for a train number on one
// calendar day, grouped by carriage and fare class.  An optional carriage
// filter restricts the count to that carriage.
func (r *InventoryRepo) AvailabilityByTrain(ctx context.Context, trainNumber string, day time.Time, carriage string) ([]CarriageAvailability, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	where := []string{
		"availability_status = 'available'",
		"train_number = ?",
		"departure_time >= ?",
		"departure_time < ?",
	}
	args := []any{trainNumber, start.Format(clock.Layout), end.Format(clock.Layout)}
	if carriage != "" {
		where = append(where, "carriage = ?")
		args = append(args, carriage)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT carriage, ticket_type, COUNT(*) FROM available_tickets
		 WHERE `+strings.Join(where, " AND ")+`
		 GROUP BY carriage, ticket_type
		 ORDER BY carriage, ticket_type`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CarriageAvailability, 0)
	for rows.Next() {
		var c CarriageAvailability
		if err := rows.Scan(&c.Carriage, &c.TicketType, &c.Seats); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (model.AvailableTicket, error) {
	var t model.AvailableTicket
	var depart, arrive string
	err := row.Scan(&t.ID, &t.TrainNumber, &t.FromStation, &t.ToStation, &depart, &arrive,
		&t.SeatNumber, &t.Carriage, &t.TicketType, &t.BasePrice, &t.CurrentPrice, &t.AvailabilityStatus,
		&t.BookingClass, &t.Amenities, &t.RouteDistanceKM)
	if err != nil {
		return t, err
	}
	if t.DepartureTime, err = time.Parse(clock.Layout, depart); err != nil {
		return t, err
	}
	if t.ArrivalTime, err = time.Parse(clock.Layout, arrive); err != nil {
		return t, err
	}
	return t, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTicket(ctx context.Context, q querier, id int64) (*model.AvailableTicket, error) {
	row := q.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM available_tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
