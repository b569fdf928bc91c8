package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brigade/internal/board"
	"brigade/internal/calendar"
	"brigade/internal/catalog"
	"brigade/internal/ledger"
	"brigade/internal/models"
	"brigade/internal/monitoring"
)

func testAPI() *KitchenAPI {
	gin.SetMode(gin.TestMode)

	cat := catalog.New([]models.Recipe{
		{ItemName: "Soup", Ingredients: map[string]int{"broth": 1}},
	})
	led := ledger.New([]models.InventoryItem{
		{Name: "broth", InitialQuantity: 2, MinThreshold: 0},
	})
	cal := calendar.New([]int{1, 2, 5})
	brd := board.New(cat, led)

	return NewKitchenAPI(brd, led, cat, cal, nil, monitoring.NewMonitor(), nil)
}

func doJSON(t *testing.T, api *KitchenAPI, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	api.Router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	api := testAPI()
	w := doJSON(t, api, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPlaceAndCookOverHTTP(t *testing.T) {
	api := testAPI()

	w := doJSON(t, api, "POST", "/api/v1/orders/T1/items", gin.H{"items": gin.H{"Soup": 2}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, api, "GET", "/api/v1/orders/T1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.OrderItemEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Soup #1", entries[0].ItemLabel)

	w = doJSON(t, api, "POST", "/api/v1/orders/T1/cook", gin.H{"item": "Soup #1"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Stock is 2; cooking both units drains it, a third unit conflicts.
	w = doJSON(t, api, "POST", "/api/v1/orders/T1/cook", gin.H{"item": "Soup #2"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/orders/T1/items", gin.H{"items": gin.H{"Soup": 1}})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, api, "POST", "/api/v1/orders/T1/cook", gin.H{"item": "Soup"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(models.KindInsufficientStock), body["kind"])
	assert.Contains(t, body, "missing")
}

func TestOrderNotFoundOverHTTP(t *testing.T) {
	api := testAPI()

	w := doJSON(t, api, "GET", "/api/v1/orders/T9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, api, "DELETE", "/api/v1/orders/T9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInventoryEndpoints(t *testing.T) {
	api := testAPI()

	w := doJSON(t, api, "GET", "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.InventoryItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "broth", items[0].Name)

	w = doJSON(t, api, "POST", "/api/v1/inventory/broth/add", gin.H{"amount": 3})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/inventory/broth/reduce", gin.H{"amount": 99})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/inventory/saffron/add", gin.H{"amount": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, api, "POST", "/api/v1/inventory/restore", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, "GET", "/api/v1/inventory/broth/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBookingEndpoints(t *testing.T) {
	api := testAPI()

	start := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	w := doJSON(t, api, "POST", "/api/v1/bookings", gin.H{
		"table": 5, "start": start, "end": end, "customer": "Alice",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var res models.TableReservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	// Overlapping booking conflicts and names the collision.
	w = doJSON(t, api, "POST", "/api/v1/bookings", gin.H{
		"table": 5, "start": start.Add(30 * time.Minute), "end": end.Add(30 * time.Minute), "customer": "Bob",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "conflicts")

	w = doJSON(t, api, "GET", fmt.Sprintf("/api/v1/tables/5/availability?start=%s&end=%s",
		start.Format(time.RFC3339), end.Format(time.RFC3339)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var avail map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &avail))
	assert.Equal(t, false, avail["available"])

	w = doJSON(t, api, "DELETE", fmt.Sprintf("/api/v1/bookings/%d", res.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, "DELETE", "/api/v1/bookings/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvailableTablesEndpoint(t *testing.T) {
	api := testAPI()

	at := time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC)
	w := doJSON(t, api, "POST", "/api/v1/bookings", gin.H{
		"table": 1, "start": at.Add(-30 * time.Minute), "end": at.Add(30 * time.Minute), "customer": "x",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, api, "GET", "/api/v1/tables/available?at="+at.Format(time.RFC3339), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Tables []int `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []int{2, 5}, body.Tables)
}

func TestRecipeEndpoints(t *testing.T) {
	api := testAPI()

	w := doJSON(t, api, "GET", "/api/v1/recipes/Soup", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, api, "GET", "/api/v1/recipes/Nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
