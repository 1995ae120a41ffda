package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeLifecycle(t *testing.T) {
	s := newTestServer(t)
	authorID, author := s.user("chef", models.RoleUser)

	id := s.createRecipe(author, "Pancakes", []uint{breakfastID},
		IngredientAmountRequest{ID: flourID, Amount: 200},
		IngredientAmountRequest{ID: eggID, Amount: 2},
	)

	w := s.do(http.MethodGet, "/api/recipes/"+itoa(id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	recipe := decode[RecipeResponse](t, w)
	assert.Equal(t, "Pancakes", recipe.Name)
	assert.Equal(t, authorID, recipe.Author.ID)
	assert.False(t, recipe.IsFavorited)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "breakfast", recipe.Tags[0].Slug)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, RecipeIngredientResponse{ID: flourID, Name: "flour", MeasurementUnit: "g", Amount: 200}, recipe.Ingredients[0])

	update := recipeBody("Fluffy pancakes", []uint{breakfastID, lunchID}, IngredientAmountRequest{ID: milkID, Amount: 250})
	update.Image = ""
	w = s.do(http.MethodPatch, "/api/recipes/"+itoa(id), author, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	recipe = decode[RecipeResponse](t, w)
	assert.Equal(t, "Fluffy pancakes", recipe.Name)
	assert.NotEmpty(t, recipe.Image)
	assert.Len(t, recipe.Tags, 2)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "milk", recipe.Ingredients[0].Name)

	w = s.do(http.MethodDelete, "/api/recipes/"+itoa(id), author, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/recipes/"+itoa(id), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeWritesRequireAuthorOrAdmin(t *testing.T) {
	s := newTestServer(t)
	_, author := s.user("chef", models.RoleUser)
	_, stranger := s.user("stranger", models.RoleUser)
	_, admin := s.user("boss", models.RoleAdmin)
	id := s.createRecipe(author, "Omelette", []uint{breakfastID})

	w := s.do(http.MethodPost, "/api/recipes", "", recipeBody("Anonymous", []uint{breakfastID}, IngredientAmountRequest{ID: flourID, Amount: 1}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPatch, "/api/recipes/"+itoa(id), stranger, recipeBody("Stolen", []uint{breakfastID}, IngredientAmountRequest{ID: flourID, Amount: 1}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.ErrForbidden, decode[models.APIError](t, w).Code)

	w = s.do(http.MethodDelete, "/api/recipes/"+itoa(id), stranger, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, "/api/recipes/"+itoa(id), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	s := newTestServer(t)
	_, author := s.user("chef", models.RoleUser)
	s.createRecipe(author, "Soup", []uint{lunchID})

	tests := []struct {
		name  string
		body  RecipeRequest
		field string
	}{
		{"no ingredients", recipeBody("Salad", []uint{lunchID}), "ingredients"},
		{"no tags", recipeBody("Salad", nil, IngredientAmountRequest{ID: flourID, Amount: 1}), "tags"},
		{"zero amount", recipeBody("Salad", []uint{lunchID}, IngredientAmountRequest{ID: flourID, Amount: 0}), "ingredients"},
		{"unknown ingredient", recipeBody("Salad", []uint{lunchID}, IngredientAmountRequest{ID: 999, Amount: 1}), "ingredients"},
		{"duplicate name", recipeBody("Soup", []uint{lunchID}, IngredientAmountRequest{ID: flourID, Amount: 1}), "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/recipes", author, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			apiErr := decode[models.APIError](t, w)
			assert.Equal(t, models.ErrValidationFailed, apiErr.Code)
			assert.Contains(t, apiErr.Details, tt.field)
		})
	}
}

func TestListRecipesFilters(t *testing.T) {
	s := newTestServer(t)
	chefID, chef := s.user("chef", models.RoleUser)
	_, baker := s.user("baker", models.RoleUser)

	s.createRecipe(chef, "Porridge", []uint{breakfastID})
	stew := s.createRecipe(chef, "Stew", []uint{lunchID})
	s.createRecipe(baker, "Bread", []uint{breakfastID, lunchID})

	w := s.do(http.MethodGet, "/api/recipes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[PaginatedResponse[RecipeResponse]](t, w)
	assert.Equal(t, int64(3), page.Count)
	assert.Equal(t, []string{"Bread", "Stew", "Porridge"}, recipeNames(page))

	w = s.do(http.MethodGet, "/api/recipes?author="+itoa(chefID), "", nil)
	assert.Equal(t, []string{"Stew", "Porridge"}, recipeNames(decode[PaginatedResponse[RecipeResponse]](t, w)))

	w = s.do(http.MethodGet, "/api/recipes?tags=breakfast&tags=lunch", "", nil)
	page = decode[PaginatedResponse[RecipeResponse]](t, w)
	assert.Equal(t, int64(3), page.Count, "a recipe with both tags is listed once")

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/recipes/"+itoa(stew)+"/favorite", baker, nil).Code)

	w = s.do(http.MethodGet, "/api/recipes?is_favorited=1", baker, nil)
	page = decode[PaginatedResponse[RecipeResponse]](t, w)
	assert.Equal(t, []string{"Stew"}, recipeNames(page))
	assert.True(t, page.Results[0].IsFavorited)

	w = s.do(http.MethodGet, "/api/recipes?is_favorited=0", baker, nil)
	assert.Equal(t, int64(3), decode[PaginatedResponse[RecipeResponse]](t, w).Count)

	w = s.do(http.MethodGet, "/api/recipes?is_favorited=1", "", nil)
	assert.Equal(t, int64(3), decode[PaginatedResponse[RecipeResponse]](t, w).Count, "flags are ignored for anonymous requests")

	w = s.do(http.MethodGet, "/api/recipes?author=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecipesPagination(t *testing.T) {
	s := newTestServer(t)
	_, chef := s.user("chef", models.RoleUser)
	for _, name := range []string{"A", "B", "C"} {
		s.createRecipe(chef, name, []uint{breakfastID})
	}

	w := s.do(http.MethodGet, "/api/recipes?limit=2", "", nil)
	page := decode[PaginatedResponse[RecipeResponse]](t, w)
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Contains(t, *page.Next, "limit=2")
	assert.Nil(t, page.Previous)

	w = s.do(http.MethodGet, "/api/recipes?limit=2&page=2", "", nil)
	page = decode[PaginatedResponse[RecipeResponse]](t, w)
	assert.Equal(t, []string{"A"}, recipeNames(page))
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Contains(t, *page.Previous, "page=1")
}

func TestRecipeMarks(t *testing.T) {
	s := newTestServer(t)
	_, chef := s.user("chef", models.RoleUser)
	_, fan := s.user("fan", models.RoleUser)
	id := s.createRecipe(chef, "Waffles", []uint{breakfastID})

	for _, mark := range []string{"favorite", "shopping_cart"} {
		t.Run(mark, func(t *testing.T) {
			path := "/api/recipes/" + itoa(id) + "/" + mark

			w := s.do(http.MethodPost, path, fan, nil)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			short := decode[ShortRecipeResponse](t, w)
			assert.Equal(t, ShortRecipeResponse{ID: id, Name: "Waffles", Image: "data:image/png;base64,iVBORw0KGgo=", CookingTime: 15}, short)

			w = s.do(http.MethodPost, path, fan, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, models.ErrConflict, decode[models.APIError](t, w).Code)

			w = s.do(http.MethodDelete, path, fan, nil)
			assert.Equal(t, http.StatusNoContent, w.Code)

			w = s.do(http.MethodDelete, path, fan, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, models.ErrRecipeNotMarked, decode[models.APIError](t, w).Code)

			w = s.do(http.MethodPost, "/api/recipes/999/"+mark, fan, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	s := newTestServer(t)
	_, chef := s.user("chef", models.RoleUser)
	_, shopper := s.user("shopper", models.RoleUser)

	pancakes := s.createRecipe(chef, "Pancakes", []uint{breakfastID},
		IngredientAmountRequest{ID: flourID, Amount: 200},
		IngredientAmountRequest{ID: eggID, Amount: 2},
	)
	cake := s.createRecipe(chef, "Cake", []uint{breakfastID},
		IngredientAmountRequest{ID: flourID, Amount: 300},
		IngredientAmountRequest{ID: milkID, Amount: 100},
	)
	for _, id := range []uint{pancakes, cake} {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/recipes/"+itoa(id)+"/shopping_cart", shopper, nil).Code)
	}

	w := s.do(http.MethodGet, "/api/recipes/download_shopping_cart", shopper, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shopping_cart.txt"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "flour - 500 g\r\negg - 2 pcs\r\nmilk - 100 ml\r\n", w.Body.String())

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, empty := s.user("empty", models.RoleUser)
	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart", empty, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRecipeCreationRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := middleware.NewRecipeCreationRateLimiter(client, 1)

	s := newTestServer(t, func(h *Handlers) {
		h.RecipeCreationLimit = limiter.Middleware()
	})
	_, chef := s.user("chef", models.RoleUser)

	s.createRecipe(chef, "First", []uint{breakfastID})
	w := s.do(http.MethodPost, "/api/recipes", chef, recipeBody("Second", []uint{breakfastID}, IngredientAmountRequest{ID: flourID, Amount: 1}))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestUnknownRecipeID(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/recipes/0", "/api/recipes/abc", "/api/recipes/42"} {
		w := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, models.ErrNotFound, decode[models.APIError](t, w).Code)
	}
}
