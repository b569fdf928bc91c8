// Package ledger is the single source of truth for ingredient stock. All
// mutation goes through one mutex so a consume either debits the whole
// requirement set or nothing; no caller can observe a partial debit or a
// negative quantity.
package ledger

import (
	"sort"
	"sync"
	"time"

	"brigade/internal/models"
)

// LowStockFunc observes an item that drained to or below its threshold.
// Invoked after the ledger lock is released; implementations must not call
// back into the ledger's mutating operations from the same goroutine chain.
type LowStockFunc func(item models.InventoryItem)

// Ledger tracks ingredient stock levels
type Ledger struct {
	mu         sync.Mutex
	items      map[string]*models.InventoryItem
	onLowStock LowStockFunc
}

// New builds a ledger from the baseline inventory. Quantity starts at
// InitialQuantity when the baseline leaves it unset.
func New(baseline []models.InventoryItem) *Ledger {
	l := &Ledger{items: make(map[string]*models.InventoryItem, len(baseline))}
	now := time.Now()
	for _, item := range baseline {
		stored := item
		if stored.Quantity == 0 && stored.InitialQuantity > 0 {
			stored.Quantity = stored.InitialQuantity
		}
		stored.LastUpdated = now
		l.items[stored.Name] = &stored
	}
	return l
}

// OnLowStock registers the low-stock observer. Call before the ledger is
// shared; there is no unregister.
func (l *Ledger) OnLowStock(fn LowStockFunc) {
	l.onLowStock = fn
}

// CheckAvailability reports whether every requirement can currently be met.
// Pure read; the answer may be stale by the time the caller acts on it, so
// Consume re-verifies under the same lock it debits under.
func (l *Ledger) CheckAvailability(requirements map[string]int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.shortfall(requirements)) == 0
}

// MissingIngredients returns the ingredient names whose stock falls short
// of the requirement, in the order they fail the check (ascending name, so
// the result is reproducible for a map input).
func (l *Ledger) MissingIngredients(requirements map[string]int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.shortfall(requirements)
}

// shortfall must be called with the lock held.
func (l *Ledger) shortfall(requirements map[string]int) []string {
	names := make([]string, 0, len(requirements))
	for name := range requirements {
		names = append(names, name)
	}
	sort.Strings(names)

	var missing []string
	for _, name := range names {
		item, ok := l.items[name]
		if !ok || item.Quantity < requirements[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// Consume atomically debits the full requirement set. Either every
// ingredient is debited or none are: the shortfall re-check and the debit
// happen under one lock, so two racing consumers of a scarce ingredient
// cannot both pass the check and drive stock negative.
func (l *Ledger) Consume(requirements map[string]int) error {
	if len(requirements) == 0 {
		return models.Invalidf("empty requirement set")
	}
	for name, qty := range requirements {
		if qty <= 0 {
			return models.Invalidf("non-positive requirement for %s: %d", name, qty)
		}
	}

	var drained []models.InventoryItem
	l.mu.Lock()
	if missing := l.shortfall(requirements); len(missing) > 0 {
		l.mu.Unlock()
		return models.InsufficientStockErr(missing)
	}
	now := time.Now()
	for name, qty := range requirements {
		item := l.items[name]
		item.Quantity -= qty
		item.LastUpdated = now
		if item.LowStock() {
			drained = append(drained, *item)
		}
	}
	l.mu.Unlock()

	l.signalLowStock(drained)
	return nil
}

// RestoreAll resets every item to its initial quantity. Intended to run on
// the daily schedule; the scheduler lives outside the core.
func (l *Ledger) RestoreAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	for _, item := range l.items {
		item.Quantity = item.InitialQuantity
		item.LastUpdated = now
	}
}

// AddQuantity increases a single item's stock.
func (l *Ledger) AddQuantity(name string, amount int) error {
	if amount <= 0 {
		return models.Invalidf("amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[name]
	if !ok {
		return models.NotFoundf("inventory item not found: %s", name)
	}
	item.Quantity += amount
	item.LastUpdated = time.Now()
	return nil
}

// ReduceQuantity decreases a single item's stock, rejecting a reduction
// past zero.
func (l *Ledger) ReduceQuantity(name string, amount int) error {
	if amount <= 0 {
		return models.Invalidf("amount must be positive, got %d", amount)
	}

	var drained []models.InventoryItem
	l.mu.Lock()
	item, ok := l.items[name]
	if !ok {
		l.mu.Unlock()
		return models.NotFoundf("inventory item not found: %s", name)
	}
	if item.Quantity < amount {
		l.mu.Unlock()
		return models.InsufficientStockErr([]string{name})
	}
	item.Quantity -= amount
	item.LastUpdated = time.Now()
	if item.LowStock() {
		drained = append(drained, *item)
	}
	l.mu.Unlock()

	l.signalLowStock(drained)
	return nil
}

// IsLowStock reports whether the item is at or below its threshold.
func (l *Ledger) IsLowStock(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[name]
	if !ok {
		return false, models.NotFoundf("inventory item not found: %s", name)
	}
	return item.LowStock(), nil
}

// Quantity returns the current stock level for name.
func (l *Ledger) Quantity(name string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[name]
	if !ok {
		return 0, models.NotFoundf("inventory item not found: %s", name)
	}
	return item.Quantity, nil
}

// Items returns a snapshot of every item, sorted by name. The copies are
// detached from the ledger's storage.
func (l *Ledger) Items() []models.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.InventoryItem, 0, len(l.items))
	for _, item := range l.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// signalLowStock fires the observer outside the ledger lock.
func (l *Ledger) signalLowStock(drained []models.InventoryItem) {
	if l.onLowStock == nil {
		return
	}
	for _, item := range drained {
		l.onLowStock(item)
	}
}
