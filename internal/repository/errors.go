// Package repository contains thin data-access wrappers over the SQLite
// store.  Each repo owns one table; multi-table operations are composed by
// the engine inside a single *sql.Tx using the Tx-suffixed methods.  This
// file defines sentinel errors shared across repositories so higher layers
// can distinguish failure scenarios with errors.Is.
package repository

import "errors"

// ErrCustomerNotFound is returned when no customer matches the given email
// or id.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrTicketNotFound is returned when an inventory ticket id does not exist.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrTicketSold is returned when the compare-and-set in MarkSoldTx loses
// the race: the ticket exists but another booking already sold it.  It is
// deliberately distinct from ErrTicketNotFound so callers can offer "pick
// another ticket" instead of "invalid id".
var ErrTicketSold = errors.New("ticket already sold")

// ErrBookingNotFound is returned when no booking matches the given
// reference.  Refunded bookings are deleted, so a reference that once
// resolved will return this error after a refund.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNoApplicableRule is returned when the refund rule table has no active
// tier covering the requested (ticket type, hours until departure).  It
// signals a policy configuration gap and must never be conflated with a 0%
// refund.
var ErrNoApplicableRule = errors.New("no applicable refund rule")

// ErrReferenceExhausted is returned when the bounded retry loop allocating
// a fresh booking reference runs out of attempts.
var ErrReferenceExhausted = errors.New("booking reference generation failed")

// ErrScheduleNotFound is returned when no train schedule matches the given
// train number.
var ErrScheduleNotFound = errors.New("train schedule not found")
