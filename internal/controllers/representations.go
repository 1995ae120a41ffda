package controllers

import (
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
)

// UserResponse is the public representation of a user
type UserResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// RecipeIngredientResponse is one ingredient line of a recipe
type RecipeIngredientResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse is the full read representation of a recipe
type RecipeResponse struct {
	ID               uint                       `json:"id"`
	Tags             []models.Tag               `json:"tags"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse is the compact recipe used by marks and the subscription feed
type ShortRecipeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse is a followed author with a preview of their recipes
type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func newUserResponse(user models.User, subscribed bool) UserResponse {
	return UserResponse{
		Email:        user.Email,
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
	}
}

func userViewResponse(view services.UserView) UserResponse {
	return newUserResponse(view.User, view.IsSubscribed)
}

func newRecipeResponse(view services.RecipeView) RecipeResponse {
	tags := view.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	ingredients := make([]RecipeIngredientResponse, 0, len(view.Ingredients))
	for _, line := range view.Ingredients {
		ingredients = append(ingredients, RecipeIngredientResponse{
			ID:              line.IngredientID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	return RecipeResponse{
		ID:               view.ID,
		Tags:             tags,
		Author:           newUserResponse(view.Author, view.AuthorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      view.IsFavorited,
		IsInShoppingCart: view.IsInShoppingCart,
		Name:             view.Name,
		Image:            view.Image,
		Text:             view.Text,
		CookingTime:      view.CookingTime,
	}
}

func newShortRecipeResponse(recipe models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func newSubscriptionResponse(feed services.AuthorFeed) SubscriptionResponse {
	recipes := make([]ShortRecipeResponse, 0, len(feed.Recipes))
	for _, recipe := range feed.Recipes {
		recipes = append(recipes, newShortRecipeResponse(recipe))
	}
	return SubscriptionResponse{
		UserResponse: newUserResponse(feed.Author, feed.IsSubscribed),
		Recipes:      recipes,
		RecipesCount: feed.RecipesCount,
	}
}
