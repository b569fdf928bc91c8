// Package board tracks the live preparation state of every ordered item,
// keyed by table. The board owns this state exclusively; the REST layer and
// the notification fan-out only ever see detached snapshots.
//
// Locking discipline: one mutex per table, created with the table's order
// set, so writes to the same table apply in arrival order while different
// tables proceed in parallel. The board-level mutex only guards the table
// map itself and is never held across a cook.
package board

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"brigade/internal/catalog"
	"brigade/internal/ledger"
	"brigade/internal/models"
)

// Board is the live order board
type Board struct {
	mu      sync.Mutex
	tables  map[string]*tableOrders
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
}

// tableOrders holds one table's entries in insertion order plus a label
// index. All access goes through its mutex.
type tableOrders struct {
	mu      sync.Mutex
	entries []*models.OrderItemEntry
	index   map[string]*models.OrderItemEntry
}

// CookResult pairs an item label with the outcome of cooking it. A nil Err
// means the entry reached ready.
type CookResult struct {
	Label string
	Err   error
}

// New builds an empty board wired to the recipe catalog and the inventory
// ledger.
func New(cat *catalog.Catalog, led *ledger.Ledger) *Board {
	return &Board{
		tables:  make(map[string]*tableOrders),
		catalog: cat,
		ledger:  led,
	}
}

// PlaceOrder adds entries for each (item, quantity) pair to the table's
// live order. A quantity above one expands into distinct entries labeled
// "item #1".."item #N"; quantity one keeps the bare item name. Existing
// entries for the table are merged with, never overwritten.
func (b *Board) PlaceOrder(tableKey string, items map[string]int) error {
	if tableKey == "" {
		return models.Invalidf("table key must not be empty")
	}
	if len(items) == 0 {
		return models.Invalidf("order must contain at least one item")
	}
	for name, qty := range items {
		if name == "" {
			return models.Invalidf("item name must not be empty")
		}
		if qty <= 0 {
			return models.Invalidf("quantity for %s must be positive, got %d", name, qty)
		}
	}

	t := b.table(tableKey, true)
	t.mu.Lock()
	defer t.mu.Unlock()

	// Expand labels up front so a collision rejects the whole order. The
	// expansion itself can collide (a literal "Soup #1" alongside "Soup" x2),
	// so duplicates within one call are rejected too.
	labels := expandLabels(items)
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		if _, dup := seen[label]; dup {
			return models.Invalidf("item %q appears more than once in the order for table %s", label, tableKey)
		}
		seen[label] = struct{}{}
		if _, exists := t.index[label]; exists {
			return models.Invalidf("item %q already on order for table %s", label, tableKey)
		}
	}

	now := time.Now()
	for _, label := range labels {
		entry := &models.OrderItemEntry{
			TableKey:  tableKey,
			ItemLabel: label,
			Status:    models.ItemStatusReceived,
			PlacedAt:  now,
		}
		t.entries = append(t.entries, entry)
		t.index[label] = entry
	}
	return nil
}

// expandLabels flattens the item map into entry labels, items in ascending
// name order so repeated calls produce the same insertion order.
func expandLabels(items map[string]int) []string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)

	var labels []string
	for _, name := range names {
		qty := items[name]
		if qty == 1 {
			labels = append(labels, name)
			continue
		}
		for i := 1; i <= qty; i++ {
			labels = append(labels, fmt.Sprintf("%s #%d", name, i))
		}
	}
	return labels
}

// UpdateStatus moves one entry to newStatus, enforcing the transition
// rules. When the update leaves every entry terminal the table is purged
// from the board.
func (b *Board) UpdateStatus(tableKey, itemLabel string, newStatus models.ItemStatus) error {
	if !newStatus.Valid() {
		return models.Invalidf("unknown status %q", newStatus)
	}

	t := b.table(tableKey, false)
	if t == nil {
		return models.NotFoundf("no live order for table %s", tableKey)
	}
	t.mu.Lock()
	entry, ok := t.index[itemLabel]
	if !ok {
		t.mu.Unlock()
		return models.NotFoundf("item %q not on order for table %s", itemLabel, tableKey)
	}
	if !entry.Status.CanTransitionTo(newStatus) {
		t.mu.Unlock()
		return models.Invalidf("cannot move %q from %s to %s", itemLabel, entry.Status, newStatus)
	}
	entry.Status = newStatus
	allDone := t.allTerminal()
	t.mu.Unlock()

	if allDone {
		b.purge(tableKey, t)
	}
	return nil
}

// CookItem drives one entry through preparation: resolve the recipe for the
// entry's base item name, verify ingredient availability, flip to
// in_preparation, consume, flip to ready.
//
// An entry already ready or served is a no-op success, so repeat calls
// never re-consume inventory. If consumption fails after the availability
// check passed (another cook won the race for the same stock) the entry is
// left in_preparation and an InconsistentState error is returned; recovery
// is explicit via RecoverEntry, never an automatic retry.
func (b *Board) CookItem(tableKey, itemLabel string) error {
	t := b.table(tableKey, false)
	if t == nil {
		return models.NotFoundf("no live order for table %s", tableKey)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return b.cookLocked(t, tableKey, itemLabel)
}

// cookLocked must be called with t.mu held.
func (b *Board) cookLocked(t *tableOrders, tableKey, itemLabel string) error {
	entry, ok := t.index[itemLabel]
	if !ok {
		return models.NotFoundf("item %q not on order for table %s", itemLabel, tableKey)
	}

	switch entry.Status {
	case models.ItemStatusReady, models.ItemStatusServed:
		return nil
	case models.ItemStatusCancelled:
		return models.Invalidf("item %q was cancelled", itemLabel)
	case models.ItemStatusInPreparation:
		return models.Inconsistentf("item %q is stuck in_preparation; recover it before cooking again", itemLabel)
	}

	recipe, err := b.catalog.Recipe(entry.BaseItemName())
	if err != nil {
		return err
	}

	if !b.ledger.CheckAvailability(recipe.Ingredients) {
		return models.InsufficientStockErr(b.ledger.MissingIngredients(recipe.Ingredients))
	}

	entry.Status = models.ItemStatusInPreparation
	if err := b.ledger.Consume(recipe.Ingredients); err != nil {
		// The stock moved between the check and the consume. The entry
		// stays in_preparation so the loss is visible, not retried.
		return models.Inconsistentf("item %q held in_preparation: %v", itemLabel, err)
	}
	entry.Status = models.ItemStatusReady
	return nil
}

// CookAllForTable cooks every entry currently received, in table insertion
// order. Entries in any other state are skipped. Results are returned in
// processing order so a run is reproducible.
func (b *Board) CookAllForTable(tableKey string) ([]CookResult, error) {
	t := b.table(tableKey, false)
	if t == nil {
		return nil, models.NotFoundf("no live order for table %s", tableKey)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var results []CookResult
	for _, entry := range t.entries {
		if entry.Status != models.ItemStatusReceived {
			continue
		}
		results = append(results, CookResult{
			Label: entry.ItemLabel,
			Err:   b.cookLocked(t, tableKey, entry.ItemLabel),
		})
	}
	return results, nil
}

// CancelOrder marks every non-terminal entry cancelled and purges the
// table from the board.
func (b *Board) CancelOrder(tableKey string) error {
	t := b.table(tableKey, false)
	if t == nil {
		return models.NotFoundf("no live order for table %s", tableKey)
	}
	t.mu.Lock()
	for _, entry := range t.entries {
		if !entry.Status.Terminal() {
			entry.Status = models.ItemStatusCancelled
		}
	}
	t.mu.Unlock()

	b.purge(tableKey, t)
	return nil
}

// RecoverEntry returns an entry stuck in_preparation to received. This is
// the manual reconciliation path after a cook surfaced InconsistentState.
func (b *Board) RecoverEntry(tableKey, itemLabel string) error {
	t := b.table(tableKey, false)
	if t == nil {
		return models.NotFoundf("no live order for table %s", tableKey)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.index[itemLabel]
	if !ok {
		return models.NotFoundf("item %q not on order for table %s", itemLabel, tableKey)
	}
	if entry.Status != models.ItemStatusInPreparation {
		return models.Invalidf("item %q is %s, not in_preparation", itemLabel, entry.Status)
	}
	entry.Status = models.ItemStatusReceived
	return nil
}

// OrdersForTable returns a snapshot of the table's entries in insertion
// order.
func (b *Board) OrdersForTable(tableKey string) ([]models.OrderItemEntry, error) {
	t := b.table(tableKey, false)
	if t == nil {
		return nil, models.NotFoundf("no live order for table %s", tableKey)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(), nil
}

// AllLiveOrders returns a snapshot of every table's entries. Tables are
// copied one at a time; the result is a consistent view per table, not a
// global point-in-time cut.
func (b *Board) AllLiveOrders() map[string][]models.OrderItemEntry {
	b.mu.Lock()
	keys := make([]string, 0, len(b.tables))
	handles := make([]*tableOrders, 0, len(b.tables))
	for key, t := range b.tables {
		keys = append(keys, key)
		handles = append(handles, t)
	}
	b.mu.Unlock()

	out := make(map[string][]models.OrderItemEntry, len(keys))
	for i, t := range handles {
		t.mu.Lock()
		if len(t.entries) > 0 {
			out[keys[i]] = t.snapshot()
		}
		t.mu.Unlock()
	}
	return out
}

// table fetches the order set for key, creating it when create is set.
func (b *Board) table(key string, create bool) *tableOrders {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tables[key]
	if !ok && create {
		t = &tableOrders{index: make(map[string]*models.OrderItemEntry)}
		b.tables[key] = t
	}
	return t
}

// purge removes the table once every entry is terminal. The table lock is
// re-taken after the board lock so the check cannot race a concurrent
// PlaceOrder reviving the table.
func (b *Board) purge(tableKey string, t *tableOrders) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t.mu.Lock()
	defer t.mu.Unlock()
	if b.tables[tableKey] == t && t.allTerminal() {
		delete(b.tables, tableKey)
	}
}

// allTerminal must be called with t.mu held.
func (t *tableOrders) allTerminal() bool {
	for _, entry := range t.entries {
		if !entry.Status.Terminal() {
			return false
		}
	}
	return true
}

// snapshot must be called with t.mu held.
func (t *tableOrders) snapshot() []models.OrderItemEntry {
	out := make([]models.OrderItemEntry, len(t.entries))
	for i, entry := range t.entries {
		out[i] = *entry
	}
	return out
}
