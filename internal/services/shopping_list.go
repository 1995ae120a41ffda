package services

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ShoppingListItem is the total amount of one ingredient across a cart
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
	// MixedUnits lists units other than MeasurementUnit seen for the same name.
	// Their amounts are still added to Amount.
	MixedUnits []string
}

// AggregateShoppingList sums ingredient amounts by ingredient name. Entries are
// walked in the given order and ingredient lines in their stored order; the
// first occurrence of a name fixes its position and unit.
func AggregateShoppingList(entries []models.CartEntry) []ShoppingListItem {
	var items []ShoppingListItem
	index := make(map[string]int)

	for _, entry := range entries {
		for _, line := range entry.Recipe.Ingredients {
			name := line.Ingredient.Name
			unit := line.Ingredient.MeasurementUnit

			i, ok := index[name]
			if !ok {
				index[name] = len(items)
				items = append(items, ShoppingListItem{
					Name:            name,
					MeasurementUnit: unit,
					Amount:          line.Amount,
				})
				continue
			}

			item := &items[i]
			item.Amount += line.Amount
			if unit != item.MeasurementUnit && !containsString(item.MixedUnits, unit) {
				item.MixedUnits = append(item.MixedUnits, unit)
			}
		}
	}
	return items
}

// RenderShoppingList writes one "name - amount unit" line per item, CRLF terminated
func RenderShoppingList(items []ShoppingListItem) []byte {
	var buf bytes.Buffer
	for _, item := range items {
		fmt.Fprintf(&buf, "%s - %d %s\r\n", item.Name, item.Amount, item.MeasurementUnit)
	}
	return buf.Bytes()
}

// ShoppingListService assembles the downloadable shopping list of a user's cart
type ShoppingListService interface {
	BuildShoppingList(requester Requester) ([]ShoppingListItem, error)
}

type shoppingListService struct {
	db *gorm.DB
}

// NewShoppingListService creates a new instance of ShoppingListService
func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

func (s *shoppingListService) BuildShoppingList(requester Requester) ([]ShoppingListItem, error) {
	if requester.IsAnonymous() {
		return nil, ErrUnauthenticated
	}

	var entries []models.CartEntry
	err := s.db.
		Preload("Recipe.Ingredients.Ingredient").
		Where("user_id = ?", requester.UserID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, translateError(err, "load shopping cart")
	}

	for i := range entries {
		lines := entries[i].Recipe.Ingredients
		sort.SliceStable(lines, func(a, b int) bool { return lines[a].ID < lines[b].ID })
	}

	items := AggregateShoppingList(entries)
	for _, item := range items {
		if len(item.MixedUnits) > 0 {
			log.WithFields(log.Fields{
				"user_id":    requester.UserID,
				"ingredient": item.Name,
				"unit":       item.MeasurementUnit,
				"other":      item.MixedUnits,
			}).Warn("Shopping list sums an ingredient recorded with different units")
		}
	}

	log.WithFields(log.Fields{
		"user_id": requester.UserID,
		"recipes": len(entries),
		"items":   len(items),
	}).Debug("Shopping list built")
	return items, nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
