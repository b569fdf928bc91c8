package models

// Recipe maps a menu item to the ingredient quantities cooking one unit
// consumes. Recipes are immutable once the catalog is loaded.
type Recipe struct {
	ItemName    string
	Ingredients map[string]int
}

// CloneIngredients returns a copy of the requirement map so callers can
// never mutate a catalog entry through the returned value.
func (r Recipe) CloneIngredients() map[string]int {
	out := make(map[string]int, len(r.Ingredients))
	for name, qty := range r.Ingredients {
		out[name] = qty
	}
	return out
}
