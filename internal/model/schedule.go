package model

// TrainSchedule is a read-only reference row describing a scheduled
// service.  The engine consults it only for display enrichment (service
// name, operator, capacity, on-board amenities) and never writes to it.
type TrainSchedule struct {
	ID              int64  `json:"id"`
	TrainNumber     string `json:"train_number"`
	ServiceName     string `json:"service_name,omitempty"`
	Operator        string `json:"operator"`
	FromStation     string `json:"from_station"`
	ToStation       string `json:"to_station"`
	DepartureTime   string `json:"departure_time"` // time of day, HH:MM
	ArrivalTime     string `json:"arrival_time"`
	JourneyMinutes  int    `json:"journey_duration"`
	DistanceKM      int    `json:"distance_km,omitempty"`
	OperatingDays   string `json:"operating_days"`
	MaxCapacity     int    `json:"max_capacity"`
	FirstClassSeats int    `json:"first_class_capacity"`
	StandardSeats   int    `json:"standard_class_capacity"`
	HasWifi         bool   `json:"has_wifi"`
	HasCatering     bool   `json:"has_catering"`
	HasPowerSockets bool   `json:"has_power_sockets"`
	ServiceStatus   string `json:"service_status"`
}
