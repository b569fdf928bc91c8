package catalog

import (
	"testing"

	"brigade/internal/models"
)

func TestRecipeLookup(t *testing.T) {
	c := New([]models.Recipe{
		{ItemName: "Soup", Ingredients: map[string]int{"broth": 1, "noodles": 1}},
		{ItemName: "Caprese", Ingredients: map[string]int{"tomato": 2}},
	})

	recipe, err := c.Recipe("Soup")
	if err != nil {
		t.Fatalf("Recipe(Soup) returned error: %v", err)
	}
	if recipe.Ingredients["broth"] != 1 || recipe.Ingredients["noodles"] != 1 {
		t.Errorf("Recipe(Soup) ingredients = %v", recipe.Ingredients)
	}

	_, err = c.Recipe("Ratatouille")
	if !models.IsKind(err, models.KindNotFound) {
		t.Errorf("Recipe(unknown) error = %v, want not_found", err)
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	source := []models.Recipe{
		{ItemName: "Soup", Ingredients: map[string]int{"broth": 1}},
	}
	c := New(source)

	// Mutating the source slice after load must not reach the catalog.
	source[0].Ingredients["broth"] = 99

	recipe, _ := c.Recipe("Soup")
	if recipe.Ingredients["broth"] != 1 {
		t.Error("mutating the source reached the catalog")
	}

	// Mutating a returned recipe must not reach the catalog either.
	recipe.Ingredients["broth"] = 42
	again, _ := c.Recipe("Soup")
	if again.Ingredients["broth"] != 1 {
		t.Error("mutating a returned recipe reached the catalog")
	}
}

func TestItemsSorted(t *testing.T) {
	c := New([]models.Recipe{
		{ItemName: "Soup"},
		{ItemName: "Caprese"},
		{ItemName: "Margherita"},
	})

	items := c.Items()
	want := []string{"Caprese", "Margherita", "Soup"}
	if len(items) != len(want) {
		t.Fatalf("Items() = %v, want %v", items, want)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("Items()[%d] = %q, want %q", i, items[i], want[i])
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}
