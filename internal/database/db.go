// Package database persists the collaborator-facing state around the
// coordination core: the recipe source, the inventory baseline, the
// append-only reservation history and low-stock events. The core never
// touches the store inside a critical section; it is seeded from here at
// startup and observed from here afterwards.
package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"brigade/internal/models"
)

// Store wraps the gorm connection. Constructed once at startup and passed
// by reference; there is no package-level instance.
type Store struct {
	db *gorm.DB
}

// RecipeRow is the persisted form of a recipe. Ingredient requirements are
// stored as a JSON object keyed by ingredient name.
type RecipeRow struct {
	gorm.Model
	Name            string `gorm:"unique_index"`
	IngredientsJSON string
}

// InventoryRow is the persisted inventory baseline for one ingredient.
type InventoryRow struct {
	gorm.Model
	Name            string `gorm:"unique_index"`
	InitialQuantity int
	MinThreshold    int
}

// ReservationRow mirrors a calendar reservation. Rows are only ever
// inserted or status-updated, never deleted.
type ReservationRow struct {
	gorm.Model
	ReservationID int64 `gorm:"unique_index"`
	TableNumber   int
	StartTime     time.Time
	EndTime       time.Time
	Status        string
	CustomerRef   string
}

// LowStockEventRow records an ingredient draining to its threshold.
type LowStockEventRow struct {
	gorm.Model
	Name      string
	Quantity  int
	Threshold int
}

// Open initializes the SQLite store and migrates its schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&RecipeRow{}, &InventoryRow{}, &ReservationRow{}, &LowStockEventRow{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SeedRecipes inserts recipes that are not yet present. Existing rows win;
// the catalog is immutable once loaded, so seeding never updates.
func (s *Store) SeedRecipes(recipes []models.Recipe) error {
	for _, r := range recipes {
		var count int64
		s.db.Model(&RecipeRow{}).Where("name = ?", r.ItemName).Count(&count)
		if count > 0 {
			continue
		}
		raw, err := json.Marshal(r.Ingredients)
		if err != nil {
			return fmt.Errorf("failed to serialize ingredients for %s: %w", r.ItemName, err)
		}
		row := RecipeRow{Name: r.ItemName, IngredientsJSON: string(raw)}
		if err := s.db.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to seed recipe %s: %w", r.ItemName, err)
		}
	}
	return nil
}

// SeedBaseline inserts inventory baseline rows that are not yet present.
func (s *Store) SeedBaseline(items []models.InventoryItem) error {
	for _, item := range items {
		var count int64
		s.db.Model(&InventoryRow{}).Where("name = ?", item.Name).Count(&count)
		if count > 0 {
			continue
		}
		row := InventoryRow{
			Name:            item.Name,
			InitialQuantity: item.InitialQuantity,
			MinThreshold:    item.MinThreshold,
		}
		if err := s.db.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to seed inventory item %s: %w", item.Name, err)
		}
	}
	return nil
}

// LoadRecipes returns every stored recipe.
func (s *Store) LoadRecipes() ([]models.Recipe, error) {
	var rows []RecipeRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	recipes := make([]models.Recipe, 0, len(rows))
	for _, row := range rows {
		ingredients := make(map[string]int)
		if row.IngredientsJSON != "" {
			if err := json.Unmarshal([]byte(row.IngredientsJSON), &ingredients); err != nil {
				return nil, fmt.Errorf("failed to deserialize ingredients for %s: %w", row.Name, err)
			}
		}
		recipes = append(recipes, models.Recipe{ItemName: row.Name, Ingredients: ingredients})
	}
	return recipes, nil
}

// LoadBaseline returns the inventory baseline.
func (s *Store) LoadBaseline() ([]models.InventoryItem, error) {
	var rows []InventoryRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load inventory baseline: %w", err)
	}
	items := make([]models.InventoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.InventoryItem{
			Name:            row.Name,
			Quantity:        row.InitialQuantity,
			InitialQuantity: row.InitialQuantity,
			MinThreshold:    row.MinThreshold,
		})
	}
	return items, nil
}

// RecordReservation appends a confirmed booking to the history.
func (s *Store) RecordReservation(res models.TableReservation) error {
	row := ReservationRow{
		ReservationID: res.ID,
		TableNumber:   res.TableNumber,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		Status:        string(res.Status),
		CustomerRef:   res.CustomerRef,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record reservation %d: %w", res.ID, err)
	}
	return nil
}

// UpdateReservationStatus mirrors a status transition into the history.
func (s *Store) UpdateReservationStatus(reservationID int64, status models.ReservationStatus) error {
	err := s.db.Model(&ReservationRow{}).
		Where("reservation_id = ?", reservationID).
		Update("status", string(status)).Error
	if err != nil {
		return fmt.Errorf("failed to update reservation %d: %w", reservationID, err)
	}
	return nil
}

// RecordLowStock appends a low-stock event.
func (s *Store) RecordLowStock(item models.InventoryItem) error {
	row := LowStockEventRow{
		Name:      item.Name,
		Quantity:  item.Quantity,
		Threshold: item.MinThreshold,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record low-stock event for %s: %w", item.Name, err)
	}
	return nil
}
