package repository

import (
	"context"
	"database/sql"

	"github.com/ukconnect/rail-booking/internal/model"
)

// ScheduleRepo reads the train_schedules reference table.  Used only for
// display enrichment (service name, operator, capacity, amenities); the
// engine never writes to it.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the given database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// GetByTrainNumber fetches the schedule row for a train number.  Returns
// ErrScheduleNotFound when the service is unknown.
func (r *ScheduleRepo) GetByTrainNumber(ctx context.Context, trainNumber string) (*model.TrainSchedule, error) {
	var s model.TrainSchedule
	err := r.db.QueryRowContext(ctx,
		`SELECT id, train_number, COALESCE(service_name, ''), operator, from_station, to_station,
		        departure_time, arrival_time, journey_duration, COALESCE(distance_km, 0), operating_days,
		        max_capacity, first_class_capacity, standard_class_capacity,
		        has_wifi, has_catering, has_power_sockets, service_status
		 FROM train_schedules WHERE train_number = ? LIMIT 1`,
		trainNumber).Scan(
		&s.ID, &s.TrainNumber, &s.ServiceName, &s.Operator, &s.FromStation, &s.ToStation,
		&s.DepartureTime, &s.ArrivalTime, &s.JourneyMinutes, &s.DistanceKM, &s.OperatingDays,
		&s.MaxCapacity, &s.FirstClassSeats, &s.StandardSeats,
		&s.HasWifi, &s.HasCatering, &s.HasPowerSockets, &s.ServiceStatus)
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
