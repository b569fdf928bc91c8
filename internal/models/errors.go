package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the coordination core can return
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindNotFound          ErrorKind = "not_found"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindBookingConflict   ErrorKind = "booking_conflict"
	KindInconsistentState ErrorKind = "inconsistent_state"
)

// Error is the tagged failure value returned by every core operation.
// Callers branch on Kind; Missing and Conflicts carry the detail for the
// stock and booking failure modes.
type Error struct {
	Kind      ErrorKind
	Message   string
	Missing   []string
	Conflicts []TableReservation
}

func (e *Error) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s (missing: %s)", e.Kind, e.Message, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Invalidf builds an InvalidInput error.
func Invalidf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockErr builds an InsufficientStock error listing the
// ingredients that fell short, in check order.
func InsufficientStockErr(missing []string) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: "insufficient stock",
		Missing: missing,
	}
}

// ConflictErr builds a BookingConflict error carrying the reservations the
// attempted interval collided with.
func ConflictErr(table int, conflicts []TableReservation) *Error {
	return &Error{
		Kind:      KindBookingConflict,
		Message:   fmt.Sprintf("table %d already booked for an overlapping interval", table),
		Conflicts: conflicts,
	}
}

// Inconsistentf builds an InconsistentState error. Used when cooking left an
// entry in_preparation because consumption failed after the availability
// check passed; surfaced for manual reconciliation, never retried silently.
func Inconsistentf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInconsistentState, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or "" if err is not a core Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a core Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
