package model

import "time"

// Customer holds contact details used for display and booking ownership.
// Customers are identified by email alone; the booking engine never mutates
// this table.
type Customer struct {
	ID         int64     `json:"id"`
	CustomerID string    `json:"customer_id"` // external reference, CUS###
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
}
