package models

import (
	"regexp"
	"time"
)

// OrderItemEntry represents one unit of a menu item on a table's live order.
// Quantities above one are expanded into separate entries labeled "item #1",
// "item #2" and so on; the label uniquely identifies an entry within its table.
type OrderItemEntry struct {
	TableKey  string
	ItemLabel string
	Status    ItemStatus
	PlacedAt  time.Time
}

var unitSuffix = regexp.MustCompile(` #\d+$`)

// BaseItemName strips the duplicate-unit suffix from the entry's label,
// returning the menu item name used for recipe lookup.
func (e OrderItemEntry) BaseItemName() string {
	return unitSuffix.ReplaceAllString(e.ItemLabel, "")
}

// ItemStatus represents the preparation state of an ordered item
type ItemStatus string

const (
	ItemStatusReceived      ItemStatus = "received"
	ItemStatusInPreparation ItemStatus = "in_preparation"
	ItemStatusReady         ItemStatus = "ready"
	ItemStatusServed        ItemStatus = "served"
	ItemStatusCancelled     ItemStatus = "cancelled"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusReceived, ItemStatusInPreparation, ItemStatusReady,
		ItemStatusServed, ItemStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is an end state. Terminal entries are purged
// from the board once every entry for the table reaches one.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusServed || s == ItemStatusCancelled
}

// CanTransitionTo reports whether the status may move to next. The forward
// path is received -> in_preparation -> ready -> served; cancellation is
// reachable from any non-terminal state.
func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	if next == ItemStatusCancelled {
		return !s.Terminal()
	}
	switch s {
	case ItemStatusReceived:
		return next == ItemStatusInPreparation
	case ItemStatusInPreparation:
		return next == ItemStatusReady
	case ItemStatusReady:
		return next == ItemStatusServed
	}
	return false
}
