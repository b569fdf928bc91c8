package models

import "time"

// InventoryItem represents an ingredient tracked by the ledger
type InventoryItem struct {
	Name            string
	Quantity        int
	InitialQuantity int
	MinThreshold    int
	LastUpdated     time.Time
}

// LowStock reports whether the item has drained to or below its threshold.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinThreshold
}
