package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus instruments for the coordinator. Exposed
// through promhttp on the metrics port wired in cmd.
type Metrics struct {
	OrdersPlaced     prometheus.Counter
	ItemsCooked      prometheus.Counter
	CookFailures     *prometheus.CounterVec
	BookingsCreated  prometheus.Counter
	BookingConflicts prometheus.Counter
	LowStock         *prometheus.GaugeVec
}

// NewMetrics registers the coordinator's instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brigade_orders_placed_total",
			Help: "Orders placed on the live order board",
		}),
		ItemsCooked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brigade_items_cooked_total",
			Help: "Order items that reached ready",
		}),
		CookFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brigade_cook_failures_total",
			Help: "Cook attempts that failed, by error kind",
		}, []string{"kind"}),
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brigade_bookings_created_total",
			Help: "Table reservations created",
		}),
		BookingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brigade_booking_conflicts_total",
			Help: "Booking attempts rejected for interval overlap",
		}),
		LowStock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brigade_low_stock",
			Help: "1 when an ingredient is at or below its threshold",
		}, []string{"ingredient"}),
	}
	reg.MustRegister(
		m.OrdersPlaced,
		m.ItemsCooked,
		m.CookFailures,
		m.BookingsCreated,
		m.BookingConflicts,
		m.LowStock,
	)
	return m
}
