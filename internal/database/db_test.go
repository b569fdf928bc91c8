package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brigade/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSeedAndLoadRecipes(t *testing.T) {
	store := testStore(t)

	recipes := []models.Recipe{
		{ItemName: "Soup", Ingredients: map[string]int{"broth": 1, "noodles": 1}},
		{ItemName: "Caprese", Ingredients: map[string]int{"tomato": 2, "cheese": 1}},
	}
	require.NoError(t, store.SeedRecipes(recipes))

	// Re-seeding must not duplicate or overwrite.
	require.NoError(t, store.SeedRecipes([]models.Recipe{
		{ItemName: "Soup", Ingredients: map[string]int{"broth": 99}},
	}))

	loaded, err := store.LoadRecipes()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byName := make(map[string]models.Recipe)
	for _, r := range loaded {
		byName[r.ItemName] = r
	}
	assert.Equal(t, map[string]int{"broth": 1, "noodles": 1}, byName["Soup"].Ingredients)
	assert.Equal(t, map[string]int{"tomato": 2, "cheese": 1}, byName["Caprese"].Ingredients)
}

func TestSeedAndLoadBaseline(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.SeedBaseline([]models.InventoryItem{
		{Name: "broth", InitialQuantity: 40, MinThreshold: 5},
	}))

	items, err := store.LoadBaseline()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 40, items[0].Quantity)
	assert.Equal(t, 40, items[0].InitialQuantity)
	assert.Equal(t, 5, items[0].MinThreshold)
}

func TestReservationHistory(t *testing.T) {
	store := testStore(t)

	res := models.TableReservation{
		ID:          1,
		TableNumber: 5,
		StartTime:   time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC),
		Status:      models.ReservationActive,
		CustomerRef: "Alice",
	}
	require.NoError(t, store.RecordReservation(res))
	require.NoError(t, store.UpdateReservationStatus(res.ID, models.ReservationCancelled))

	var rows []ReservationRow
	require.NoError(t, store.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, string(models.ReservationCancelled), rows[0].Status)
	assert.Equal(t, "Alice", rows[0].CustomerRef)
}

func TestRecordLowStock(t *testing.T) {
	store := testStore(t)

	require.NoError(t, store.RecordLowStock(models.InventoryItem{
		Name: "broth", Quantity: 2, MinThreshold: 5,
	}))

	var rows []LowStockEventRow
	require.NoError(t, store.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "broth", rows[0].Name)
	assert.Equal(t, 2, rows[0].Quantity)
}
