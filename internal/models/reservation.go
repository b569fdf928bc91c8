package models

import "time"

// TableReservation holds a table for a party over the half-open interval
// [StartTime, EndTime). Reservations are never deleted; they only move
// between statuses, so the calendar keeps an append-only history.
type TableReservation struct {
	ID          int64
	TableNumber int
	StartTime   time.Time
	EndTime     time.Time
	Status      ReservationStatus
	CustomerRef string
	CreatedAt   time.Time
}

// Overlaps reports whether the reservation's interval shares any instant
// with [start, end) under the half-open comparison.
func (r TableReservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// Contains reports whether at falls inside [StartTime, EndTime).
func (r TableReservation) Contains(at time.Time) bool {
	return !at.Before(r.StartTime) && at.Before(r.EndTime)
}

// ReservationStatus represents the state of a table reservation
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// CanTransitionTo reports whether the status may move to next. Only active
// reservations transition; completed and cancelled are terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	if s != ReservationActive {
		return false
	}
	return next == ReservationCompleted || next == ReservationCancelled
}
