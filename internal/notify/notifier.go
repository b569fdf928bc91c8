package notify

import (
	"log"
	"time"

	"brigade/internal/models"
	"brigade/internal/monitoring"
)

// Recorder is the slice of the database store the notifier writes through.
type Recorder interface {
	RecordLowStock(item models.InventoryItem) error
	RecordReservation(res models.TableReservation) error
	UpdateReservationStatus(reservationID int64, status models.ReservationStatus) error
}

// Notifier fans coordinator events out to the hub, the broker and the
// store. Any sink may be nil. Delivery is asynchronous: callers only
// enqueue, a dedicated goroutine does the store writes and broker
// publishes, so a ledger or calendar operation never blocks on sink I/O.
// Errors are logged and swallowed; the transactional core has already
// committed by the time an event reaches here.
type Notifier struct {
	hub       *Hub
	publisher *Publisher
	recorder  Recorder
	metrics   *monitoring.Metrics
	queue     chan func()
	done      chan struct{}
}

// NewNotifier wires the available sinks and starts the delivery goroutine.
func NewNotifier(hub *Hub, publisher *Publisher, recorder Recorder, metrics *monitoring.Metrics) *Notifier {
	n := &Notifier{
		hub:       hub,
		publisher: publisher,
		recorder:  recorder,
		metrics:   metrics,
		queue:     make(chan func(), 256),
		done:      make(chan struct{}),
	}
	go n.run()
	return n
}

// Close stops the delivery goroutine. Events still queued are dropped.
func (n *Notifier) Close() {
	close(n.done)
}

func (n *Notifier) run() {
	for {
		select {
		case deliver := <-n.queue:
			deliver()
		case <-n.done:
			return
		}
	}
}

// enqueue hands a delivery to the goroutine without ever blocking the
// caller. A full queue drops the event; the signal layer is observational.
func (n *Notifier) enqueue(deliver func()) {
	select {
	case n.queue <- deliver:
	case <-n.done:
	default:
		log.Println("Notification queue full; dropping event")
	}
}

// LowStock handles a ledger low-stock signal. The gauge update is
// in-memory and immediate; store write and fan-out are deferred to the
// delivery goroutine.
func (n *Notifier) LowStock(item models.InventoryItem) {
	if n.metrics != nil {
		n.metrics.LowStock.WithLabelValues(item.Name).Set(1)
	}
	n.enqueue(func() {
		if n.recorder != nil {
			if err := n.recorder.RecordLowStock(item); err != nil {
				log.Printf("Failed to record low-stock event for %s: %v", item.Name, err)
			}
		}
		n.emit(Event{Type: EventLowStock, At: time.Now(), Payload: item})
	})
}

// Restocked clears the low-stock gauge for an ingredient.
func (n *Notifier) Restocked(name string) {
	if n.metrics != nil {
		n.metrics.LowStock.WithLabelValues(name).Set(0)
	}
}

// Booked handles a confirmed reservation.
func (n *Notifier) Booked(res models.TableReservation) {
	if n.metrics != nil {
		n.metrics.BookingsCreated.Inc()
	}
	n.enqueue(func() {
		if n.recorder != nil {
			if err := n.recorder.RecordReservation(res); err != nil {
				log.Printf("Failed to record reservation %d: %v", res.ID, err)
			}
		}
		n.emit(Event{Type: EventBookingConfirmed, At: time.Now(), Payload: res})
	})
}

// ReservationChanged handles a completed or cancelled transition.
func (n *Notifier) ReservationChanged(res models.TableReservation) {
	n.enqueue(func() {
		if n.recorder != nil {
			if err := n.recorder.UpdateReservationStatus(res.ID, res.Status); err != nil {
				log.Printf("Failed to update reservation %d: %v", res.ID, err)
			}
		}
		eventType := EventReservationCompleted
		if res.Status == models.ReservationCancelled {
			eventType = EventReservationCancelled
		}
		n.emit(Event{Type: eventType, At: time.Now(), Payload: res})
	})
}

// emit runs on the delivery goroutine.
func (n *Notifier) emit(event Event) {
	if n.hub != nil {
		n.hub.Broadcast(event)
	}
	if n.publisher != nil {
		if err := n.publisher.Publish(event); err != nil {
			log.Printf("Failed to publish %s: %v", event.Type, err)
		}
	}
}
