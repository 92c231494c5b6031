package engine

import (
	"context"
	"errors"
	"time"

	"github.com/ukconnect/rail-booking/internal/model"
	"github.com/ukconnect/rail-booking/internal/repository"
)

// SearchCriteria carries the caller's ticket search filters.  From and To
// accept city names or exact station names; empty fields are unconstrained.
type SearchCriteria struct {
	From          string
	To            string
	DepartureDate string // "2006-01-02", optional
	TicketType    string
	MaxPrice      float64
	Limit         int
}

const defaultSearchLimit = 50

// SearchTickets returns available tickets matching the criteria, soonest
// departure first, cheapest first within a departure.  Past departures are
// never returned.  A From or To that resolves to no known station yields an
// empty result rather than an unfiltered one.
func (e *Engine) SearchTickets(ctx context.Context, c SearchCriteria) ([]model.AvailableTicket, error) {
	filter := repository.SearchFilter{
		MaxPrice: c.MaxPrice,
		Limit:    c.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultSearchLimit
	}

	if c.From != "" {
		stations := e.resolver.Resolve(c.From)
		if len(stations) == 0 {
			return []model.AvailableTicket{}, nil
		}
		filter.FromStations = stations
	}
	if c.To != "" {
		stations := e.resolver.Resolve(c.To)
		if len(stations) == 0 {
			return []model.AvailableTicket{}, nil
		}
		filter.ToStations = stations
	}

	if c.TicketType != "" {
		if !model.ValidTicketType(c.TicketType) {
			return nil, newError(KindValidation, "unknown ticket type %q", c.TicketType)
		}
		filter.TicketType = c.TicketType
	}
	if c.MaxPrice < 0 {
		return nil, newError(KindValidation, "max price cannot be negative")
	}

	now := e.clk.Now()
	filter.DepartAfter = now
	if c.DepartureDate != "" {
		day, err := time.Parse("2006-01-02", c.DepartureDate)
		if err != nil {
			return nil, newError(KindValidation, "departure date must be YYYY-MM-DD")
		}
		if day.After(now) {
			filter.DepartAfter = day
		}
		filter.DepartBefore = day.AddDate(0, 0, 1)
	}

	tickets, err := e.inventory.Search(ctx, filter)
	if err != nil {
		return nil, storageError(err)
	}
	return tickets, nil
}

// TicketDetail is an inventory ticket enriched with its service schedule,
// when one is on file.
type TicketDetail struct {
	Ticket   model.AvailableTicket `json:"ticket"`
	Schedule *model.TrainSchedule  `json:"schedule,omitempty"`
}

// TicketDetails fetches one inventory ticket with schedule enrichment.  A
// missing schedule row is not an error; the ticket is returned alone.
func (e *Engine) TicketDetails(ctx context.Context, ticketID int64) (*TicketDetail, error) {
	if ticketID <= 0 {
		return nil, newError(KindValidation, "ticket id must be a positive integer")
	}
	ticket, err := e.inventory.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return nil, newError(KindNotFound, "ticket %d not found", ticketID)
	}
	if err != nil {
		return nil, storageError(err)
	}

	detail := &TicketDetail{Ticket: *ticket}
	schedule, err := e.schedules.GetByTrainNumber(ctx, ticket.TrainNumber)
	if err == nil {
		detail.Schedule = schedule
	} else if !errors.Is(err, repository.ErrScheduleNotFound) {
		return nil, storageError(err)
	}
	return detail, nil
}

// TrainAvailability summarizes remaining seats for a service on a day.
type TrainAvailability struct {
	TrainNumber string                            `json:"train_number"`
	Date        string                            `json:"date"`
	Carriages   []repository.CarriageAvailability `json:"carriages"`
}

// CheckSeatAvailability reports seats still on sale for a train on a given
// date, broken down by carriage and fare class.  Carriage narrows the
// report to one carriage when non-empty.
func (e *Engine) CheckSeatAvailability(ctx context.Context, trainNumber, date, carriage string) (*TrainAvailability, error) {
	if trainNumber == "" {
		return nil, newError(KindValidation, "train number is required")
	}
	day := e.clk.Now()
	if date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, newError(KindValidation, "date must be YYYY-MM-DD")
		}
		day = parsed
	}

	carriages, err := e.inventory.AvailabilityByTrain(ctx, trainNumber, day, carriage)
	if err != nil {
		return nil, storageError(err)
	}
	return &TrainAvailability{
		TrainNumber: trainNumber,
		Date:        day.Format("2006-01-02"),
		Carriages:   carriages,
	}, nil
}

// RefundPolicy lists the refund tiers for a fare class, strictest last.
func (e *Engine) RefundPolicy(ctx context.Context, ticketType string) ([]model.RefundRule, error) {
	if !model.ValidTicketType(ticketType) {
		return nil, newError(KindValidation, "unknown ticket type %q", ticketType)
	}
	rules, err := e.rules.ListForType(ctx, ticketType)
	if err != nil {
		return nil, storageError(err)
	}
	return rules, nil
}
