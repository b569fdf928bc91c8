// Package catalog provides read-only recipe lookup for the kitchen. The
// catalog is loaded once at startup from an external source and never
// mutated afterwards, so lookups need no synchronization.
package catalog

import (
	"sort"

	"brigade/internal/models"
)

// Catalog maps menu item names to their ingredient requirements
type Catalog struct {
	recipes map[string]models.Recipe
}

// New builds a catalog from the loaded recipe set. Ingredient maps are
// copied so later mutation of the source slice cannot reach the catalog.
func New(recipes []models.Recipe) *Catalog {
	c := &Catalog{recipes: make(map[string]models.Recipe, len(recipes))}
	for _, r := range recipes {
		c.recipes[r.ItemName] = models.Recipe{
			ItemName:    r.ItemName,
			Ingredients: r.CloneIngredients(),
		}
	}
	return c
}

// Recipe returns the recipe for itemName, or a NotFound error.
func (c *Catalog) Recipe(itemName string) (models.Recipe, error) {
	r, ok := c.recipes[itemName]
	if !ok {
		return models.Recipe{}, models.NotFoundf("recipe not found: %s", itemName)
	}
	return models.Recipe{ItemName: r.ItemName, Ingredients: r.CloneIngredients()}, nil
}

// Items returns all catalog item names in sorted order.
func (c *Catalog) Items() []string {
	names := make([]string, 0, len(c.recipes))
	for name := range c.recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded recipes.
func (c *Catalog) Len() int {
	return len(c.recipes)
}
