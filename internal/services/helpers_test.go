package services

import (
	"fmt"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture holds a migrated in-memory database with a small catalog
type fixture struct {
	db    *gorm.DB
	flour models.Ingredient
	egg   models.Ingredient
	milk  models.Ingredient
	tags  map[string]models.Tag
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{db: setupTestDB(t), tags: map[string]models.Tag{}}

	f.flour = models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	f.egg = models.Ingredient{Name: "egg", MeasurementUnit: "pcs"}
	f.milk = models.Ingredient{Name: "milk", MeasurementUnit: "ml"}
	for _, ing := range []*models.Ingredient{&f.flour, &f.egg, &f.milk} {
		require.NoError(t, f.db.Create(ing).Error)
	}

	for i, slug := range []string{"breakfast", "lunch", "dinner"} {
		tag := models.Tag{Name: slug, Slug: slug, Color: fmt.Sprintf("#00000%d", i)}
		require.NoError(t, f.db.Create(&tag).Error)
		f.tags[slug] = tag
	}
	return f
}

func (f *fixture) user(t *testing.T, username, role string) Requester {
	t.Helper()
	u := models.User{
		Email:    username + "@example.com",
		Username: username,
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, f.db.Create(&u).Error)
	return Requester{UserID: u.ID, Role: u.Role}
}

func (f *fixture) input(name string, tags []string, lines ...IngredientAmount) RecipeInput {
	in := RecipeInput{
		Name:        name,
		Text:        "Mix and bake.",
		Image:       "data:image/png;base64,AAAA",
		CookingTime: 10,
		Ingredients: lines,
	}
	for _, slug := range tags {
		in.Tags = append(in.Tags, f.tags[slug].ID)
	}
	return in
}

func (f *fixture) recipe(t *testing.T, author Requester, name string, tags []string, lines ...IngredientAmount) uint {
	t.Helper()
	if len(lines) == 0 {
		lines = []IngredientAmount{{ID: f.flour.ID, Amount: 100}}
	}
	view, err := NewRecipeService(f.db, 10).CreateRecipe(author, f.input(name, tags, lines...))
	require.NoError(t, err)
	return view.ID
}

func recipeIDs(views []RecipeView) []uint {
	ids := make([]uint, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}
