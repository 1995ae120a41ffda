package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/metrics"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// UserController handles HTTP requests related to users and subscriptions
type UserController interface {
	ListUsers(c *gin.Context)
	Register(c *gin.Context)
	Me(c *gin.Context)
	SetPassword(c *gin.Context)
	GetUser(c *gin.Context)
	// ListSubscriptions retrieves the followed authors with a preview of their recipes
	ListSubscriptions(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
}

// RegisterRequest is the body of a sign-up request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,username,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,max=150"`
}

// SetPasswordRequest is the body of a password change
type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type userController struct {
	users         services.UserService
	subscriptions services.SubscriptionService
}

// NewUserController creates a new instance of UserController
func NewUserController(users services.UserService, subscriptions services.SubscriptionService) *userController {
	return &userController{users: users, subscriptions: subscriptions}
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} PaginatedResponse[UserResponse]
// @Router /api/users [get]
func (c *userController) ListUsers(ctx *gin.Context) {
	page, err := c.users.ListUsers(requesterFrom(ctx), paginationFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, paginate(ctx, page, userViewResponse))
}

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "New user"
// @Success 201 {object} UserResponse
// @Failure 400 {object} models.APIError
// @Router /api/users [post]
func (c *userController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}
	if err := c.users.CreateUser(user); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, newUserResponse(*user, false))
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/users/me [get]
func (c *userController) Me(ctx *gin.Context) {
	requester := requesterFrom(ctx)
	user, err := c.users.GetUserView(requester, requester.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, userViewResponse(user))
}

// SetPassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Param passwords body SetPasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/set_password [post]
func (c *userController) SetPassword(ctx *gin.Context) {
	var req SetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindingError(ctx, err)
		return
	}

	if err := c.users.SetPassword(requesterFrom(ctx), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetUser godoc
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} models.APIError
// @Router /api/users/{id} [get]
func (c *userController) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.users.GetUserView(requesterFrom(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, userViewResponse(user))
}

// ListSubscriptions godoc
// @Summary Subscription feed
// @Description Authors the user follows, each with up to recipes_limit of their newest recipes
// @Tags users
// @Produce json
// @Param recipes_limit query int false "Recipes per author"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} PaginatedResponse[SubscriptionResponse]
// @Security BearerAuth
// @Router /api/users/subscriptions [get]
func (c *userController) ListSubscriptions(ctx *gin.Context) {
	recipesLimit := services.ParseRecipesLimit(ctx.Query("recipes_limit"))

	page, err := c.subscriptions.ListSubscriptions(requesterFrom(ctx), recipesLimit, paginationFrom(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, paginate(ctx, page, newSubscriptionResponse))
}

// Subscribe godoc
// @Summary Follow an author
// @Tags users
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the response"
// @Success 201 {object} SubscriptionResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [post]
func (c *userController) Subscribe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	recipesLimit := services.ParseRecipesLimit(ctx.Query("recipes_limit"))
	feed, err := c.subscriptions.Subscribe(requesterFrom(ctx), id, recipesLimit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	metrics.Subscriptions.WithLabelValues(metrics.ActionAdd).Inc()
	ctx.JSON(http.StatusCreated, newSubscriptionResponse(feed))
}

// Unsubscribe godoc
// @Summary Unfollow an author
// @Tags users
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [delete]
func (c *userController) Unsubscribe(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	if err := c.subscriptions.Unsubscribe(requesterFrom(ctx), id); err != nil {
		respondRelationError(ctx, err, models.ErrNotSubscribed, "You are not subscribed to this author")
		return
	}
	metrics.Subscriptions.WithLabelValues(metrics.ActionRemove).Inc()
	ctx.Status(http.StatusNoContent)
}
