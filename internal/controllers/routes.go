package controllers

import (
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything mounted under /api
type Handlers struct {
	Recipes RecipeController
	Users   UserController
	Catalog CatalogController
	Auth    *AuthController
	Clients *ClientController
	// OAuthToken serves the client credentials token endpoint
	OAuthToken gin.HandlerFunc
	// RecipeCreationLimit runs before recipe creation; nil disables rate limiting
	RecipeCreationLimit gin.HandlerFunc
}

// RegisterRoutes mounts the API on api. Bearer tokens are verified with jwtSecret.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, jwtSecret []byte) {
	authRequired := middleware.OAuth2Auth(jwtSecret)
	authOptional := middleware.OptionalAuth(jwtSecret)

	tokens := api.Group("/auth/token")
	{
		tokens.POST("/login", h.Auth.Login)
		tokens.POST("/logout", authRequired, h.Auth.Logout)
	}
	if h.OAuthToken != nil {
		api.POST("/oauth/token", h.OAuthToken)
	}

	users := api.Group("/users")
	{
		users.GET("", authOptional, h.Users.ListUsers)
		users.POST("", h.Users.Register)
		users.GET("/me", authRequired, h.Users.Me)
		users.POST("/set_password", authRequired, h.Users.SetPassword)
		users.GET("/subscriptions", authRequired, h.Users.ListSubscriptions)
		users.GET("/:id", authOptional, h.Users.GetUser)
		users.POST("/:id/subscribe", authRequired, h.Users.Subscribe)
		users.DELETE("/:id/subscribe", authRequired, h.Users.Unsubscribe)
	}

	admin := middleware.RequireRole(models.RoleAdmin)

	tags := api.Group("/tags")
	{
		tags.GET("", h.Catalog.ListTags)
		tags.GET("/:id", h.Catalog.GetTag)
		tags.POST("", authRequired, admin, h.Catalog.CreateTag)
	}

	ingredients := api.Group("/ingredients")
	{
		ingredients.GET("", h.Catalog.ListIngredients)
		ingredients.GET("/:id", h.Catalog.GetIngredient)
		ingredients.POST("", authRequired, admin, h.Catalog.CreateIngredient)
	}

	createRecipe := []gin.HandlerFunc{authRequired}
	if h.RecipeCreationLimit != nil {
		createRecipe = append(createRecipe, h.RecipeCreationLimit)
	}
	createRecipe = append(createRecipe, h.Recipes.CreateRecipe)

	recipes := api.Group("/recipes")
	{
		recipes.GET("", authOptional, h.Recipes.ListRecipes)
		recipes.POST("", createRecipe...)
		recipes.GET("/download_shopping_cart", authRequired, h.Recipes.DownloadShoppingCart)
		recipes.GET("/:id", authOptional, h.Recipes.GetRecipe)
		recipes.PATCH("/:id", authRequired, h.Recipes.UpdateRecipe)
		recipes.PUT("/:id", authRequired, h.Recipes.UpdateRecipe)
		recipes.DELETE("/:id", authRequired, h.Recipes.DeleteRecipe)
		recipes.POST("/:id/favorite", authRequired, h.Recipes.AddFavorite)
		recipes.DELETE("/:id/favorite", authRequired, h.Recipes.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", authRequired, h.Recipes.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", authRequired, h.Recipes.RemoveFromShoppingCart)
	}

	clients := api.Group("/clients")
	clients.Use(authRequired)
	{
		clients.GET("", h.Clients.ListClients)
		clients.POST("", h.Clients.CreateClient)
		clients.DELETE("/:id", h.Clients.DeleteClient)
	}
}
