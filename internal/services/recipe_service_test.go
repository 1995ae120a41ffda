package services

import (
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlag(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		present  bool
		expected bool
	}{
		{name: "absent", raw: "", present: false, expected: false},
		{name: "true", raw: "true", present: true, expected: true},
		{name: "one", raw: "1", present: true, expected: true},
		{name: "false", raw: "false", present: true, expected: false},
		{name: "zero", raw: "0", present: true, expected: false},
		{name: "empty but present", raw: "", present: true, expected: true},
		{name: "anything else", raw: "yes", present: true, expected: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFlag(tt.raw, tt.present))
		})
	}
}

func TestAnnotateRecipes(t *testing.T) {
	recipes := []models.Recipe{{ID: 1, AuthorID: 9}, {ID: 2, AuthorID: 8}}
	favorites := map[uint]bool{1: true}
	cart := map[uint]bool{2: true}
	following := map[uint]bool{9: true}

	t.Run("anonymous gets false everywhere", func(t *testing.T) {
		views := AnnotateRecipes(recipes, Anonymous(), favorites, cart, following)
		require.Len(t, views, 2)
		for _, v := range views {
			assert.False(t, v.IsFavorited)
			assert.False(t, v.IsInShoppingCart)
			assert.False(t, v.AuthorSubscribed)
		}
	})

	t.Run("authenticated reads the sets", func(t *testing.T) {
		views := AnnotateRecipes(recipes, Requester{UserID: 3}, favorites, cart, following)
		require.Len(t, views, 2)
		assert.True(t, views[0].IsFavorited)
		assert.False(t, views[0].IsInShoppingCart)
		assert.True(t, views[0].AuthorSubscribed)
		assert.False(t, views[1].IsFavorited)
		assert.True(t, views[1].IsInShoppingCart)
		assert.False(t, views[1].AuthorSubscribed)
	})
}

func TestListRecipes(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleUser)
	svc := NewRecipeService(f.db, 10)

	pancakes := f.recipe(t, alice, "Pancakes", []string{"breakfast"})
	soup := f.recipe(t, bob, "Soup", []string{"lunch", "dinner"})
	omelette := f.recipe(t, alice, "Omelette", []string{"breakfast", "lunch"})
	stew := f.recipe(t, bob, "Stew", []string{"dinner"})

	_, err := svc.AddFavorite(alice, soup)
	require.NoError(t, err)
	_, err = svc.AddFavorite(alice, stew)
	require.NoError(t, err)
	_, err = svc.AddToCart(alice, stew)
	require.NoError(t, err)
	_, err = svc.AddToCart(alice, pancakes)
	require.NoError(t, err)

	t.Run("anonymous sees everything newest first without marks", func(t *testing.T) {
		page, err := svc.ListRecipes(Anonymous(), RecipeCriteria{FavoritedOnly: true, InCartOnly: true})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Count)
		assert.Equal(t, []uint{stew, omelette, soup, pancakes}, recipeIDs(page.Results))
		for _, v := range page.Results {
			assert.False(t, v.IsFavorited)
			assert.False(t, v.IsInShoppingCart)
		}
	})

	t.Run("author is an exact match", func(t *testing.T) {
		page, err := svc.ListRecipes(Anonymous(), RecipeCriteria{AuthorID: &alice.UserID})
		require.NoError(t, err)
		assert.Equal(t, []uint{omelette, pancakes}, recipeIDs(page.Results))
	})

	t.Run("tags match any without duplicates", func(t *testing.T) {
		page, err := svc.ListRecipes(Anonymous(), RecipeCriteria{TagSlugs: []string{"breakfast", "lunch"}})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Count)
		assert.Equal(t, []uint{omelette, soup, pancakes}, recipeIDs(page.Results))
	})

	t.Run("unknown tag yields nothing", func(t *testing.T) {
		page, err := svc.ListRecipes(Anonymous(), RecipeCriteria{TagSlugs: []string{"brunch"}})
		require.NoError(t, err)
		assert.Zero(t, page.Count)
		assert.Empty(t, page.Results)
	})

	t.Run("favorited only returns the requester's favorites", func(t *testing.T) {
		page, err := svc.ListRecipes(alice, RecipeCriteria{FavoritedOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []uint{stew, soup}, recipeIDs(page.Results))
		for _, v := range page.Results {
			assert.True(t, v.IsFavorited)
		}
	})

	t.Run("criteria combine with AND", func(t *testing.T) {
		page, err := svc.ListRecipes(alice, RecipeCriteria{
			FavoritedOnly: true,
			InCartOnly:    true,
			TagSlugs:      []string{"dinner"},
		})
		require.NoError(t, err)
		require.Len(t, page.Results, 1)
		assert.Equal(t, stew, page.Results[0].ID)
		assert.True(t, page.Results[0].IsFavorited)
		assert.True(t, page.Results[0].IsInShoppingCart)
	})

	t.Run("marks are relative to the requester", func(t *testing.T) {
		page, err := svc.ListRecipes(bob, RecipeCriteria{FavoritedOnly: true})
		require.NoError(t, err)
		assert.Empty(t, page.Results)

		page, err = svc.ListRecipes(alice, RecipeCriteria{})
		require.NoError(t, err)
		marks := map[uint][2]bool{}
		for _, v := range page.Results {
			marks[v.ID] = [2]bool{v.IsFavorited, v.IsInShoppingCart}
		}
		assert.Equal(t, [2]bool{true, true}, marks[stew])
		assert.Equal(t, [2]bool{false, false}, marks[omelette])
		assert.Equal(t, [2]bool{true, false}, marks[soup])
		assert.Equal(t, [2]bool{false, true}, marks[pancakes])
	})

	t.Run("pagination keeps the total count", func(t *testing.T) {
		page, err := svc.ListRecipes(Anonymous(), RecipeCriteria{Pagination: Pagination{Page: 2, Limit: 3}})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Count)
		assert.Equal(t, []uint{pancakes}, recipeIDs(page.Results))
		assert.True(t, page.HasPrevious())
		assert.False(t, page.HasNext())
	})

	t.Run("listing does not change the store", func(t *testing.T) {
		var count int64
		require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
		assert.Equal(t, int64(4), count)
	})
}

func TestGetRecipe(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	svc := NewRecipeService(f.db, 10)

	id := f.recipe(t, alice, "Crepes", []string{"dinner", "breakfast"},
		IngredientAmount{ID: f.milk.ID, Amount: 250},
		IngredientAmount{ID: f.flour.ID, Amount: 120},
	)

	view, err := svc.GetRecipe(Anonymous(), id)
	require.NoError(t, err)
	assert.Equal(t, "Crepes", view.Name)
	assert.Equal(t, "alice", view.Author.Username)
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, "milk", view.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 250, view.Ingredients[0].Amount)
	require.Len(t, view.Tags, 2)
	assert.Equal(t, "breakfast", view.Tags[0].Slug)

	_, err = svc.GetRecipe(Anonymous(), id+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	svc := NewRecipeService(f.db, 10)
	f.recipe(t, alice, "Pancakes", []string{"breakfast"})

	testCases := []struct {
		name  string
		field string
		edit  func(in *RecipeInput)
	}{
		{name: "zero cooking time", field: "cooking_time", edit: func(in *RecipeInput) { in.CookingTime = 0 }},
		{name: "zero amount", field: "ingredients", edit: func(in *RecipeInput) { in.Ingredients[0].Amount = 0 }},
		{name: "no ingredients", field: "ingredients", edit: func(in *RecipeInput) { in.Ingredients = nil }},
		{name: "no tags", field: "tags", edit: func(in *RecipeInput) { in.Tags = nil }},
		{name: "unknown tag", field: "tags", edit: func(in *RecipeInput) { in.Tags = []uint{999} }},
		{name: "unknown ingredient", field: "ingredients", edit: func(in *RecipeInput) { in.Ingredients[0].ID = 999 }},
		{name: "missing image", field: "image", edit: func(in *RecipeInput) { in.Image = "" }},
		{name: "duplicate name", field: "name", edit: func(in *RecipeInput) { in.Name = "Pancakes" }},
		{name: "duplicate ingredient", field: "ingredients", edit: func(in *RecipeInput) {
			in.Ingredients = append(in.Ingredients, IngredientAmount{ID: in.Ingredients[0].ID, Amount: 3})
		}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input("Waffles", []string{"breakfast"}, IngredientAmount{ID: f.flour.ID, Amount: 100})
			tt.edit(&in)

			_, err := svc.CreateRecipe(alice, in)
			require.Error(t, err)
			require.True(t, IsValidation(err), "expected validation error, got %v", err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)

			var count int64
			require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
			assert.Equal(t, int64(1), count, "nothing may be written")
		})
	}

	t.Run("anonymous cannot create", func(t *testing.T) {
		_, err := svc.CreateRecipe(Anonymous(), f.input("Waffles", []string{"breakfast"}, IngredientAmount{ID: f.flour.ID, Amount: 1}))
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestUpdateRecipe(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleUser)
	admin := f.user(t, "root", models.RoleAdmin)
	svc := NewRecipeService(f.db, 10)

	id := f.recipe(t, alice, "Pancakes", []string{"breakfast"})
	f.recipe(t, bob, "Soup", []string{"lunch"})

	t.Run("non author is forbidden", func(t *testing.T) {
		_, err := svc.UpdateRecipe(bob, id, f.input("Bob's Pancakes", []string{"lunch"}, IngredientAmount{ID: f.egg.ID, Amount: 2}))
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("author keeps the same name and replaces content", func(t *testing.T) {
		in := f.input("Pancakes", []string{"lunch", "dinner"}, IngredientAmount{ID: f.egg.ID, Amount: 2})
		in.Image = ""
		view, err := svc.UpdateRecipe(alice, id, in)
		require.NoError(t, err)
		assert.Equal(t, "Pancakes", view.Name)
		assert.NotEmpty(t, view.Image, "image is kept when omitted")
		require.Len(t, view.Ingredients, 1)
		assert.Equal(t, "egg", view.Ingredients[0].Ingredient.Name)
		require.Len(t, view.Tags, 2)
		assert.Equal(t, "lunch", view.Tags[0].Slug)
	})

	t.Run("name of another recipe collides", func(t *testing.T) {
		_, err := svc.UpdateRecipe(alice, id, f.input("Soup", []string{"lunch"}, IngredientAmount{ID: f.egg.ID, Amount: 2}))
		assert.True(t, IsValidation(err))
	})

	t.Run("admin may update", func(t *testing.T) {
		view, err := svc.UpdateRecipe(admin, id, f.input("Fluffy Pancakes", []string{"breakfast"}, IngredientAmount{ID: f.milk.ID, Amount: 300}))
		require.NoError(t, err)
		assert.Equal(t, "Fluffy Pancakes", view.Name)
		assert.Equal(t, alice.UserID, view.AuthorID)
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, err := svc.UpdateRecipe(alice, 999, f.input("X", []string{"lunch"}, IngredientAmount{ID: f.egg.ID, Amount: 2}))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteRecipe(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	bob := f.user(t, "bob", models.RoleUser)
	svc := NewRecipeService(f.db, 10)

	id := f.recipe(t, alice, "Pancakes", []string{"breakfast", "lunch"})
	_, err := svc.AddFavorite(bob, id)
	require.NoError(t, err)
	_, err = svc.AddToCart(bob, id)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteRecipe(bob, id), ErrForbidden)
	require.NoError(t, svc.DeleteRecipe(alice, id))

	for name, model := range map[string]interface{}{
		"recipes":            &models.Recipe{},
		"favorites":          &models.Favorite{},
		"cart_entries":       &models.CartEntry{},
		"recipe_ingredients": &models.RecipeIngredient{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, name)
	}
	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, svc.DeleteRecipe(alice, id), ErrNotFound)
}

func TestRecipeMarks(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice", models.RoleUser)
	svc := NewRecipeService(f.db, 10)
	id := f.recipe(t, alice, "Pancakes", []string{"breakfast"})

	t.Run("second favorite conflicts and keeps the first", func(t *testing.T) {
		preview, err := svc.AddFavorite(alice, id)
		require.NoError(t, err)
		assert.Equal(t, "Pancakes", preview.Name)

		_, err = svc.AddFavorite(alice, id)
		assert.ErrorIs(t, err, ErrConflict)

		var count int64
		require.NoError(t, f.db.Model(&models.Favorite{}).Where("user_id = ? AND recipe_id = ?", alice.UserID, id).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("second cart entry conflicts", func(t *testing.T) {
		_, err := svc.AddToCart(alice, id)
		require.NoError(t, err)
		_, err = svc.AddToCart(alice, id)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unique index rejects a raw duplicate", func(t *testing.T) {
		err := f.db.Create(&models.Favorite{UserID: alice.UserID, RecipeID: id}).Error
		assert.ErrorIs(t, translateError(err, "favorite"), ErrConflict)
	})

	t.Run("removing twice reports a missing relation", func(t *testing.T) {
		require.NoError(t, svc.RemoveFavorite(alice, id))
		assert.ErrorIs(t, svc.RemoveFavorite(alice, id), ErrRelationNotFound)
		require.NoError(t, svc.RemoveFromCart(alice, id))
		assert.ErrorIs(t, svc.RemoveFromCart(alice, id), ErrRelationNotFound)
	})

	t.Run("missing recipe", func(t *testing.T) {
		_, err := svc.AddFavorite(alice, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.RemoveFromCart(alice, 999), ErrNotFound)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := svc.AddToCart(Anonymous(), id)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestAuthorize(t *testing.T) {
	recipe := &models.Recipe{AuthorID: 1}
	author := Requester{UserID: 1, Role: models.RoleUser}
	other := Requester{UserID: 2, Role: models.RoleUser}
	admin := Requester{UserID: 3, Role: models.RoleAdmin}

	testCases := []struct {
		action    Action
		requester Requester
		expected  error
	}{
		{ActionList, Anonymous(), nil},
		{ActionRetrieve, Anonymous(), nil},
		{ActionCreate, Anonymous(), ErrUnauthenticated},
		{ActionCreate, other, nil},
		{ActionUpdate, Anonymous(), ErrUnauthenticated},
		{ActionUpdate, other, ErrForbidden},
		{ActionUpdate, author, nil},
		{ActionDelete, admin, nil},
		{ActionDelete, other, ErrForbidden},
	}

	for _, tt := range testCases {
		t.Run(tt.action.String(), func(t *testing.T) {
			err := Authorize(tt.action, tt.requester, recipe)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}
