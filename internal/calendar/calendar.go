// Package calendar owns the table reservation history and guarantees that
// no two active reservations for the same table overlap. The overlap check
// and the insert happen inside one critical section, closing the
// check-then-insert race between concurrent bookers.
package calendar

import (
	"sort"
	"sync"
	"time"

	"brigade/internal/models"
)

// BookedFunc observes a confirmed booking. Invoked after the calendar lock
// is released; failures in the observer never unwind the booking.
type BookedFunc func(res models.TableReservation)

// Calendar manages per-table reservation intervals
type Calendar struct {
	mu       sync.Mutex
	nextID   int64
	byTable  map[int][]*models.TableReservation
	byID     map[int64]*models.TableReservation
	tables   []int
	onBooked BookedFunc
	onChange func(res models.TableReservation)
}

// New builds a calendar for the restaurant's table numbers.
func New(tables []int) *Calendar {
	sorted := append([]int(nil), tables...)
	sort.Ints(sorted)
	return &Calendar{
		nextID:  1,
		byTable: make(map[int][]*models.TableReservation),
		byID:    make(map[int64]*models.TableReservation),
		tables:  sorted,
	}
}

// OnBooked registers the booking-confirmation observer. Call before the
// calendar is shared.
func (c *Calendar) OnBooked(fn BookedFunc) {
	c.onBooked = fn
}

// OnStatusChange registers an observer for completed/cancelled transitions.
func (c *Calendar) OnStatusChange(fn func(res models.TableReservation)) {
	c.onChange = fn
}

// IsAvailable reports whether the table has no active reservation
// overlapping [start, end).
func (c *Calendar) IsAvailable(tableNumber int, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, models.Invalidf("end time must be after start time")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.knownTable(tableNumber) {
		return false, models.NotFoundf("unknown table %d", tableNumber)
	}
	return len(c.collisions(tableNumber, start, end)) == 0, nil
}

// AvailableTables returns the table numbers with no active reservation
// whose interval contains at.
func (c *Calendar) AvailableTables(at time.Time) []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var free []int
	for _, table := range c.tables {
		occupied := false
		for _, res := range c.byTable[table] {
			if res.Status == models.ReservationActive && res.Contains(at) {
				occupied = true
				break
			}
		}
		if !occupied {
			free = append(free, table)
		}
	}
	return free
}

// BookTable reserves the table for [start, end). The overlap re-check and
// the insert are a single indivisible step under the calendar lock; two
// concurrent bookers targeting overlapping windows cannot both succeed. On
// conflict the returned error carries the colliding reservations.
func (c *Calendar) BookTable(tableNumber int, start, end time.Time, customerRef string) (models.TableReservation, error) {
	if !end.After(start) {
		return models.TableReservation{}, models.Invalidf("end time must be after start time")
	}

	c.mu.Lock()
	if !c.knownTable(tableNumber) {
		c.mu.Unlock()
		return models.TableReservation{}, models.NotFoundf("unknown table %d", tableNumber)
	}
	if colliding := c.collisions(tableNumber, start, end); len(colliding) > 0 {
		c.mu.Unlock()
		return models.TableReservation{}, models.ConflictErr(tableNumber, colliding)
	}

	res := &models.TableReservation{
		ID:          c.nextID,
		TableNumber: tableNumber,
		StartTime:   start,
		EndTime:     end,
		Status:      models.ReservationActive,
		CustomerRef: customerRef,
		CreatedAt:   time.Now(),
	}
	c.nextID++
	c.byTable[tableNumber] = append(c.byTable[tableNumber], res)
	c.byID[res.ID] = res
	booked := *res
	c.mu.Unlock()

	if c.onBooked != nil {
		c.onBooked(booked)
	}
	return booked, nil
}

// CancelReservation moves a reservation to cancelled. Cancelling an
// already-cancelled reservation is a no-op success; a completed one cannot
// be cancelled.
func (c *Calendar) CancelReservation(reservationID int64) error {
	c.mu.Lock()
	res, ok := c.byID[reservationID]
	if !ok {
		c.mu.Unlock()
		return models.NotFoundf("unknown reservation %d", reservationID)
	}
	if res.Status == models.ReservationCancelled {
		c.mu.Unlock()
		return nil
	}
	if !res.Status.CanTransitionTo(models.ReservationCancelled) {
		c.mu.Unlock()
		return models.Invalidf("reservation %d is %s and cannot be cancelled", reservationID, res.Status)
	}
	res.Status = models.ReservationCancelled
	changed := *res
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(changed)
	}
	return nil
}

// CompleteElapsed moves every active reservation whose end time is at or
// before now to completed, returning the transitioned reservations. The
// caller drives the clock; the calendar never reads the wall clock for
// state transitions.
func (c *Calendar) CompleteElapsed(now time.Time) []models.TableReservation {
	c.mu.Lock()
	var done []models.TableReservation
	for _, res := range c.byID {
		if res.Status == models.ReservationActive && !res.EndTime.After(now) {
			res.Status = models.ReservationCompleted
			done = append(done, *res)
		}
	}
	c.mu.Unlock()

	sort.Slice(done, func(i, j int) bool { return done[i].ID < done[j].ID })
	if c.onChange != nil {
		for _, res := range done {
			c.onChange(res)
		}
	}
	return done
}

// Reservations returns a snapshot of the table's full reservation history
// in booking order.
func (c *Calendar) Reservations(tableNumber int) ([]models.TableReservation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.knownTable(tableNumber) {
		return nil, models.NotFoundf("unknown table %d", tableNumber)
	}
	out := make([]models.TableReservation, 0, len(c.byTable[tableNumber]))
	for _, res := range c.byTable[tableNumber] {
		out = append(out, *res)
	}
	return out, nil
}

// Tables returns the known table numbers in ascending order.
func (c *Calendar) Tables() []int {
	return append([]int(nil), c.tables...)
}

// collisions must be called with the lock held. Returns copies of the
// active reservations overlapping [start, end).
func (c *Calendar) collisions(tableNumber int, start, end time.Time) []models.TableReservation {
	var out []models.TableReservation
	for _, res := range c.byTable[tableNumber] {
		if res.Status == models.ReservationActive && res.Overlaps(start, end) {
			out = append(out, *res)
		}
	}
	return out
}

// knownTable must be called with the lock held.
func (c *Calendar) knownTable(tableNumber int) bool {
	i := sort.SearchInts(c.tables, tableNumber)
	return i < len(c.tables) && c.tables[i] == tableNumber
}
