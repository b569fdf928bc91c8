package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"brigade/internal/board"
	"brigade/internal/calendar"
	"brigade/internal/catalog"
	"brigade/internal/ledger"
	"brigade/internal/models"
	"brigade/internal/monitoring"
	"brigade/internal/notify"
)

// KitchenAPI exposes the coordination core over HTTP. It holds references
// to the four components but owns no state of its own; every mutation goes
// through the components' public operations.
type KitchenAPI struct {
	Router   *gin.Engine
	Board    *board.Board
	Ledger   *ledger.Ledger
	Catalog  *catalog.Catalog
	Calendar *calendar.Calendar
	Hub      *notify.Hub
	Monitor  *monitoring.Monitor
	Metrics  *monitoring.Metrics
}

// NewKitchenAPI builds the router over the injected components. Hub and
// Metrics may be nil in tests.
func NewKitchenAPI(b *board.Board, l *ledger.Ledger, cat *catalog.Catalog, cal *calendar.Calendar, hub *notify.Hub, mon *monitoring.Monitor, met *monitoring.Metrics) *KitchenAPI {
	api := &KitchenAPI{
		Router:   gin.Default(),
		Board:    b,
		Ledger:   l,
		Catalog:  cat,
		Calendar: cal,
		Hub:      hub,
		Monitor:  mon,
		Metrics:  met,
	}
	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (k *KitchenAPI) setupRoutes() {
	k.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if k.Hub != nil {
		k.Router.GET("/ws", k.Hub.HandleWS)
	}

	v1 := k.Router.Group("/api/v1")
	{
		// Order board
		v1.GET("/orders", k.GetAllOrders)
		v1.GET("/orders/:table", k.GetOrdersForTable)
		v1.POST("/orders/:table/items", k.PlaceOrder)
		v1.PUT("/orders/:table/status", k.UpdateStatus)
		v1.POST("/orders/:table/cook", k.CookItem)
		v1.POST("/orders/:table/cook-all", k.CookAllForTable)
		v1.POST("/orders/:table/recover", k.RecoverEntry)
		v1.DELETE("/orders/:table", k.CancelOrder)

		// Inventory ledger
		v1.GET("/inventory", k.GetInventory)
		v1.POST("/inventory/:name/add", k.AddQuantity)
		v1.POST("/inventory/:name/reduce", k.ReduceQuantity)
		v1.GET("/inventory/:name/low-stock", k.IsLowStock)
		v1.POST("/inventory/restore", k.RestoreAll)

		// Recipe catalog
		v1.GET("/recipes", k.ListRecipes)
		v1.GET("/recipes/:name", k.GetRecipe)

		// Booking calendar
		v1.GET("/tables/available", k.GetAvailableTables)
		v1.GET("/tables/:number/availability", k.IsTableAvailable)
		v1.GET("/tables/:number/reservations", k.GetReservations)
		v1.POST("/bookings", k.BookTable)
		v1.DELETE("/bookings/:id", k.CancelReservation)
	}

	k.Router.GET("/monitor", func(c *gin.Context) {
		if k.Monitor == nil {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusOK, k.Monitor.GetMetrics())
	})
}

// statusFor maps a core error kind to an HTTP status.
func statusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindInvalidInput:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindInsufficientStock, models.KindBookingConflict:
		return http.StatusConflict
	case models.KindInconsistentState:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	var coreErr *models.Error
	if e, ok := err.(*models.Error); ok {
		coreErr = e
	}
	if coreErr != nil {
		body["kind"] = coreErr.Kind
		if len(coreErr.Missing) > 0 {
			body["missing"] = coreErr.Missing
		}
		if len(coreErr.Conflicts) > 0 {
			body["conflicts"] = coreErr.Conflicts
		}
	}
	c.JSON(statusFor(err), body)
}

// Order board handlers

func (k *KitchenAPI) GetAllOrders(c *gin.Context) {
	c.JSON(http.StatusOK, k.Board.AllLiveOrders())
}

func (k *KitchenAPI) GetOrdersForTable(c *gin.Context) {
	entries, err := k.Board.OrdersForTable(c.Param("table"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (k *KitchenAPI) PlaceOrder(c *gin.Context) {
	var req struct {
		Items map[string]int `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := k.Board.PlaceOrder(c.Param("table"), req.Items); err != nil {
		fail(c, err)
		return
	}
	if k.Metrics != nil {
		k.Metrics.OrdersPlaced.Inc()
	}
	if k.Monitor != nil {
		k.Monitor.IncrementMetric("orders_placed")
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed"})
}

func (k *KitchenAPI) UpdateStatus(c *gin.Context) {
	var req struct {
		Item   string `json:"item"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := k.Board.UpdateStatus(c.Param("table"), req.Item, models.ItemStatus(req.Status)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

func (k *KitchenAPI) CookItem(c *gin.Context) {
	var req struct {
		Item string `json:"item"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := k.Board.CookItem(c.Param("table"), req.Item); err != nil {
		if k.Metrics != nil {
			k.Metrics.CookFailures.WithLabelValues(string(models.KindOf(err))).Inc()
		}
		fail(c, err)
		return
	}
	if k.Metrics != nil {
		k.Metrics.ItemsCooked.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item ready"})
}

func (k *KitchenAPI) CookAllForTable(c *gin.Context) {
	results, err := k.Board.CookAllForTable(c.Param("table"))
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		entry := gin.H{"item": r.Label}
		if r.Err != nil {
			entry["error"] = r.Err.Error()
			entry["kind"] = models.KindOf(r.Err)
			if k.Metrics != nil {
				k.Metrics.CookFailures.WithLabelValues(string(models.KindOf(r.Err))).Inc()
			}
		} else {
			entry["status"] = models.ItemStatusReady
			if k.Metrics != nil {
				k.Metrics.ItemsCooked.Inc()
			}
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (k *KitchenAPI) RecoverEntry(c *gin.Context) {
	var req struct {
		Item string `json:"item"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := k.Board.RecoverEntry(c.Param("table"), req.Item); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item returned to received"})
}

func (k *KitchenAPI) CancelOrder(c *gin.Context) {
	if err := k.Board.CancelOrder(c.Param("table")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

// Inventory ledger handlers

func (k *KitchenAPI) GetInventory(c *gin.Context) {
	c.JSON(http.StatusOK, k.Ledger.Items())
}

func (k *KitchenAPI) AddQuantity(c *gin.Context) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := k.Ledger.AddQuantity(c.Param("name"), req.Amount); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quantity added"})
}

func (k *KitchenAPI) ReduceQuantity(c *gin.Context) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := k.Ledger.ReduceQuantity(c.Param("name"), req.Amount); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quantity reduced"})
}

func (k *KitchenAPI) IsLowStock(c *gin.Context) {
	low, err := k.Ledger.IsLowStock(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "low_stock": low})
}

func (k *KitchenAPI) RestoreAll(c *gin.Context) {
	k.Ledger.RestoreAll()
	if k.Monitor != nil {
		k.Monitor.RecordMetric("last_restore", time.Now().Format(time.RFC3339))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory restored to baseline"})
}

// Recipe catalog handlers

func (k *KitchenAPI) ListRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": k.Catalog.Items()})
}

func (k *KitchenAPI) GetRecipe(c *gin.Context) {
	recipe, err := k.Catalog.Recipe(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// Booking calendar handlers

func (k *KitchenAPI) GetAvailableTables(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at must be RFC3339"})
			return
		}
		at = parsed
	}
	c.JSON(http.StatusOK, gin.H{"at": at, "tables": k.Calendar.AvailableTables(at)})
}

func (k *KitchenAPI) IsTableAvailable(c *gin.Context) {
	table, start, end, ok := bookingParams(c, c.Param("number"), c.Query("start"), c.Query("end"))
	if !ok {
		return
	}
	available, err := k.Calendar.IsAvailable(table, start, end)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"table": table, "available": available})
}

func (k *KitchenAPI) GetReservations(c *gin.Context) {
	table, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table number must be an integer"})
		return
	}
	reservations, err := k.Calendar.Reservations(table)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (k *KitchenAPI) BookTable(c *gin.Context) {
	var req struct {
		Table    int       `json:"table"`
		Start    time.Time `json:"start"`
		End      time.Time `json:"end"`
		Customer string    `json:"customer"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := k.Calendar.BookTable(req.Table, req.Start, req.End, req.Customer)
	if err != nil {
		if models.IsKind(err, models.KindBookingConflict) && k.Metrics != nil {
			k.Metrics.BookingConflicts.Inc()
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (k *KitchenAPI) CancelReservation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservation id must be an integer"})
		return
	}
	if err := k.Calendar.CancelReservation(id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled"})
}

// bookingParams parses the table number and interval query parameters,
// writing the 400 response itself on failure.
func bookingParams(c *gin.Context, rawTable, rawStart, rawEnd string) (int, time.Time, time.Time, bool) {
	table, err := strconv.Atoi(rawTable)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table number must be an integer"})
		return 0, time.Time{}, time.Time{}, false
	}
	start, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
		return 0, time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.RFC3339, rawEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
		return 0, time.Time{}, time.Time{}, false
	}
	return table, start, end, true
}
