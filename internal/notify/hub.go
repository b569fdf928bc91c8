// Package notify fans low-stock signals and booking confirmations out to
// observers: connected websocket dashboards, an optional AMQP exchange, and
// the persistent event log. Delivery is fire-and-observe; a failed delivery
// never unwinds the operation that produced the event.
package notify

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Event is the wire form of a coordinator notification
type Event struct {
	Type    string      `json:"type"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload"`
}

// Event types broadcast by the coordinator.
const (
	EventLowStock             = "inventory.low_stock"
	EventBookingConfirmed     = "booking.confirmed"
	EventReservationCompleted = "booking.completed"
	EventReservationCancelled = "booking.cancelled"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboards connect from any origin
	},
}

// Hub maintains the set of connected websocket clients
type Hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// HandleWS upgrades the request and registers the connection until it
// closes.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, 32)}
	h.mu.Lock()
	h.clients[cl] = true
	h.mu.Unlock()

	go cl.writeLoop()
	go h.readLoop(cl)
}

// Broadcast sends the event to every connected client. Slow clients drop
// the message rather than block the sender.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", event.Type, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			// Client is not keeping up; disconnect it.
			close(cl.send)
			delete(h.clients, cl)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// readLoop drains control frames and unregisters the client when the
// connection drops.
func (h *Hub) readLoop(cl *client) {
	defer func() {
		h.mu.Lock()
		if h.clients[cl] {
			close(cl.send)
			delete(h.clients, cl)
		}
		h.mu.Unlock()
		cl.conn.Close()
	}()
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (cl *client) writeLoop() {
	for data := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
