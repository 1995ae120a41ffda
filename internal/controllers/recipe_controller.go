package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// shoppingListFilename is the attachment name of the downloaded shopping list
const shoppingListFilename = "shopping_cart.txt"

// RecipeController handles HTTP requests related to recipes
type RecipeController interface {
	// ListRecipes retrieves the recipes matching the query filters
	ListRecipes(c *gin.Context)
	// GetRecipe retrieves a recipe by its ID
	GetRecipe(c *gin.Context)
	// CreateRecipe publishes a new recipe
	CreateRecipe(c *gin.Context)
	// UpdateRecipe replaces the content of an existing recipe
	UpdateRecipe(c *gin.Context)
	// DeleteRecipe deletes a recipe by its ID
	DeleteRecipe(c *gin.Context)
	// AddFavorite marks a recipe as favorite
	AddFavorite(c *gin.Context)
	// RemoveFavorite drops the favorite mark
	RemoveFavorite(c *gin.Context)
	// AddToShoppingCart puts a recipe into the shopping cart
	AddToShoppingCart(c *gin.Context)
	// RemoveFromShoppingCart takes a recipe out of the shopping cart
	RemoveFromShoppingCart(c *gin.Context)
	// DownloadShoppingCart returns the aggregated shopping list as a text file
	DownloadShoppingCart(c *gin.Context)
}

// IngredientAmountRequest is one ingredient line of a recipe write
type IngredientAmountRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

// RecipeRequest is the body of recipe create and update requests
type RecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients" binding:"dive"`
	Tags        []uint                    `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime int                       `json:"cooking_time"`
}

func (r RecipeRequest) toInput() services.RecipeInput {
	lines := make([]services.IngredientAmount, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		lines = append(lines, services.IngredientAmount{ID: line.ID, Amount: line.Amount})
	}
	return services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		Ingredients: lines,
		Tags:        r.Tags,
	}
}

type recipeController struct {
	service      services.RecipeService
	shoppingList services.ShoppingListService
}

// NewRecipeController creates a new instance of RecipeController
func NewRecipeController(service services.RecipeService, shoppingList services.ShoppingListService) *recipeController {
	return &recipeController{service: service, shoppingList: shoppingList}
}

// ListRecipes godoc
// @Summary List recipes
// @Description List recipes newest first. Filters combine; tags match any of the given slugs.
// @Tags recipes
// @Produce json
// @Param author query int false "Author user ID"
// @Param tags query []string false "Tag slug, repeatable" collectionFormat(multi)
// @Param is_favorited query string false "Only the requester's favorites (1/0)"
// @Param is_in_shopping_cart query string false "Only recipes in the requester's cart (1/0)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} PaginatedResponse[RecipeResponse]
// @Failure 400 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/recipes [get]
func (c *recipeController) ListRecipes(ctx *gin.Context) {
	criteria := services.RecipeCriteria{
		TagSlugs:   ctx.QueryArray("tags"),
		Pagination: paginationFrom(ctx),
	}

	if raw := ctx.Query("author"); raw != "" {
		authorID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, models.NewAPIError(
				models.ErrValidationFailed,
				"Invalid author",
				map[string]interface{}{"author": "must be a user ID"},
			))
			return
		}
		id := uint(authorID)
		criteria.AuthorID = &id
	}

	raw, present := ctx.GetQuery("is_favorited")
	criteria.FavoritedOnly = services.ParseFlag(raw, present)
	raw, present = ctx.GetQuery("is_in_shopping_cart")
	criteria.InCartOnly = services.ParseFlag(raw, present)

	page, err := c.service.ListRecipes(requesterFrom(ctx), criteria)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, paginate(ctx, page, newRecipeResponse))
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Description Get a single recipe annotated for the requester
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (c *recipeController) GetRecipe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	recipe, err := c.service.GetRecipe(requesterFrom(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, newRecipeResponse(recipe))
}

// CreateRecipe godoc
// @Summary Create a new recipe
// @Description Publish a recipe authored by the authenticated user
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body RecipeRequest true "Recipe"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Failure 429 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes [post]
func (c *recipeController) CreateRecipe(ctx *gin.Context) {
	var req RecipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	recipe, err := c.service.CreateRecipe(requesterFrom(ctx), req.toInput())
	if err != nil {
		respondError(ctx, err)
		return
	}
	metrics.RecipesWritten.WithLabelValues(metrics.OperationCreate).Inc()
	ctx.JSON(http.StatusCreated, newRecipeResponse(recipe))
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Replace the content of a recipe. Only its author or an admin may do so.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body RecipeRequest true "Recipe"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [patch]
func (c *recipeController) UpdateRecipe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req RecipeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	recipe, err := c.service.UpdateRecipe(requesterFrom(ctx), id, req.toInput())
	if err != nil {
		respondError(ctx, err)
		return
	}
	metrics.RecipesWritten.WithLabelValues(metrics.OperationUpdate).Inc()
	ctx.JSON(http.StatusOK, newRecipeResponse(recipe))
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Delete a recipe together with its favorites and cart entries
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [delete]
func (c *recipeController) DeleteRecipe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.DeleteRecipe(requesterFrom(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	metrics.RecipesWritten.WithLabelValues(metrics.OperationDelete).Inc()
	ctx.Status(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [post]
func (c *recipeController) AddFavorite(ctx *gin.Context) {
	c.addMark(ctx, metrics.KindFavorite, c.service.AddFavorite)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [delete]
func (c *recipeController) RemoveFavorite(ctx *gin.Context) {
	c.removeMark(ctx, metrics.KindFavorite, c.service.RemoveFavorite, "Recipe is not in favorites")
}

// AddToShoppingCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} ShortRecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [post]
func (c *recipeController) AddToShoppingCart(ctx *gin.Context) {
	c.addMark(ctx, metrics.KindShoppingCart, c.service.AddToCart)
}

// RemoveFromShoppingCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [delete]
func (c *recipeController) RemoveFromShoppingCart(ctx *gin.Context) {
	c.removeMark(ctx, metrics.KindShoppingCart, c.service.RemoveFromCart, "Recipe is not in the shopping cart")
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredients of every recipe in the cart, summed per name and unit, as a text attachment
// @Tags recipes
// @Produce plain
// @Success 200 {string} string "One line per ingredient: name - amount unit"
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/recipes/download_shopping_cart [get]
func (c *recipeController) DownloadShoppingCart(ctx *gin.Context) {
	items, err := c.shoppingList.BuildShoppingList(requesterFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	for _, item := range items {
		if len(item.MixedUnits) > 0 {
			metrics.ShoppingListMixedUnits.Inc()
		}
	}
	metrics.ShoppingListDownloads.Inc()

	ctx.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	ctx.Data(http.StatusOK, "text/plain; charset=utf-8", services.RenderShoppingList(items))
}

func (c *recipeController) addMark(ctx *gin.Context, kind string, add func(services.Requester, uint) (models.Recipe, error)) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	recipe, err := add(requesterFrom(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	metrics.RecipeMarks.WithLabelValues(kind, metrics.ActionAdd).Inc()
	ctx.JSON(http.StatusCreated, newShortRecipeResponse(recipe))
}

func (c *recipeController) removeMark(ctx *gin.Context, kind string, remove func(services.Requester, uint) error, notMarked string) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := remove(requesterFrom(ctx), id); err != nil {
		respondRelationError(ctx, err, models.ErrRecipeNotMarked, notMarked)
		return
	}
	metrics.RecipeMarks.WithLabelValues(kind, metrics.ActionRemove).Inc()
	ctx.Status(http.StatusNoContent)
}
