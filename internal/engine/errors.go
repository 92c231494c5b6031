package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure so callers can react without parsing
// messages.  The set is closed; handlers map kinds onto HTTP statuses and
// the agent layer maps them onto conversational replies.
type Kind string

const (
	// KindNotFound – the input referenced a nonexistent customer, ticket
	// or booking.
	KindNotFound Kind = "not_found"
	// KindConflict – lost a race for inventory (ticket already sold).
	KindConflict Kind = "conflict"
	// KindInvalidState – the entity exists but its state forbids the
	// operation (e.g. refunding a used booking).
	KindInvalidState Kind = "invalid_state"
	// KindPolicyGap – the refund rule table has no matching tier; a
	// configuration gap, never silently defaulted.
	KindPolicyGap Kind = "policy_gap"
	// KindResourceExhaustion – bounded retry for reference allocation ran
	// out of attempts.
	KindResourceExhaustion Kind = "resource_exhaustion"
	// KindValidation – malformed input rejected before any store access.
	KindValidation Kind = "validation"
	// KindStorage – the underlying store failed; any in-flight atomic
	// operation has been rolled back.
	KindStorage Kind = "storage"
)

// Error is the discriminated failure result of every engine operation.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func storageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage operation failed", cause: err}
}

// KindOf extracts the Kind from an engine error; any other error is
// treated as storage failure.  A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}
