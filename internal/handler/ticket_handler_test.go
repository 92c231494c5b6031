package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukconnect/rail-booking/internal/handler"
	"github.com/ukconnect/rail-booking/internal/location"
	"github.com/ukconnect/rail-booking/internal/model"
)

func TestSearchEndpoint(t *testing.T) {
	eng, db := newTestEnv(t)
	h := handler.NewTicketHandler(eng)
	e := echo.New()

	seedTicket(t, db, "1A", 10*time.Hour, 67.50)
	seedTicket(t, db, "1B", 12*time.Hour, 89.00)

	rec, c := doJSON(e, http.MethodGet, "/v1/tickets/search?from=london&to=manchester&max_price=70", "")
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data  []model.AvailableTicket `json:"data"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, 67.50, resp.Data[0].CurrentPrice)

	rec, c = doJSON(e, http.MethodGet, "/v1/tickets/search?max_price=notanumber", "")
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketByIDEndpoint(t *testing.T) {
	eng, db := newTestEnv(t)
	h := handler.NewTicketHandler(eng)
	e := echo.New()

	id := seedTicket(t, db, "1A", 10*time.Hour, 67.50)

	rec, c := doJSON(e, http.MethodGet, "/", "")
	c.SetPath("/v1/tickets/:id")
	c.SetParamNames("id")
	c.SetParamValues(jsonInt(id))
	require.NoError(t, h.GetByID(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Ticket model.AvailableTicket `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "London Euston", detail.Ticket.FromStation)

	rec, c = doJSON(e, http.MethodGet, "/", "")
	c.SetPath("/v1/tickets/:id")
	c.SetParamNames("id")
	c.SetParamValues("99999")
	require.NoError(t, h.GetByID(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrainAvailabilityEndpoint(t *testing.T) {
	eng, db := newTestEnv(t)
	h := handler.NewTicketHandler(eng)
	e := echo.New()

	seedTicket(t, db, "1A", 3*time.Hour, 67.50)
	seedTicket(t, db, "1B", 3*time.Hour, 67.50)

	rec, c := doJSON(e, http.MethodGet, "/", "")
	c.SetPath("/v1/trains/:number/availability")
	c.SetParamNames("number")
	c.SetParamValues("uk102")
	require.NoError(t, h.TrainAvailability(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		TrainNumber string `json:"train_number"`
		Carriages   []struct {
			Seats int `json:"available_seats"`
		} `json:"carriages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "UK102", report.TrainNumber)
	require.Len(t, report.Carriages, 1)
	assert.Equal(t, 2, report.Carriages[0].Seats)
}

func TestCustomerBookingsEndpoint(t *testing.T) {
	eng, db := newTestEnv(t)
	h := handler.NewCustomerHandler(eng)
	e := echo.New()

	ticketID := seedTicket(t, db, "1A", 10*time.Hour, 67.50)
	_, err := eng.BookTicket(context.Background(), "james.thompson@email.com", ticketID, "credit_card")
	require.NoError(t, err)

	rec, c := doJSON(e, http.MethodGet, "/", "")
	c.SetPath("/v1/customers/:email/bookings")
	c.SetParamNames("email")
	c.SetParamValues("james.thompson@email.com")
	require.NoError(t, h.Bookings(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ActiveBookings []model.BookedTicket `json:"active_bookings"`
		AllBookings    []model.BookedTicket `json:"all_bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.ActiveBookings, 1)
	assert.Len(t, resp.AllBookings, 1)

	rec, c = doJSON(e, http.MethodGet, "/", "")
	c.SetPath("/v1/customers/:email/bookings")
	c.SetParamNames("email")
	c.SetParamValues("nobody@email.com")
	require.NoError(t, h.Bookings(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocationSuggestionsEndpoint(t *testing.T) {
	h := handler.NewLocationHandler(location.NewResolver())
	e := echo.New()

	rec, c := doJSON(e, http.MethodGet, "/v1/locations/suggestions?q=man", "")
	require.NoError(t, h.Suggestions(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Manchester Piccadilly")

	rec, c = doJSON(e, http.MethodGet, "/v1/locations/suggestions", "")
	require.NoError(t, h.Suggestions(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
