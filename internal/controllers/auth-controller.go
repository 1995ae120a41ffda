package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type AuthController struct {
	userService services.UserService
	jwtSecret   []byte
	tokenTTL    time.Duration
}

func NewAuthController(userService services.UserService, jwtSecret string, tokenTTL time.Duration) *AuthController {
	return &AuthController{
		userService: userService,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTL,
	}
}

// LoginRequest is the body of a token login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Obtain an auth token
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} map[string]string "auth_token"
// @Failure 400 {object} models.APIError
// @Router /api/auth/token/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := ac.userService.GetUserByEmail(req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		log.WithField("email", req.Email).Debug("Login rejected")
		c.JSON(http.StatusBadRequest, models.NewAPIError(
			models.ErrInvalidCredentials,
			"Unable to log in with provided credentials",
		))
		return
	}

	token, err := auth.IssueUserToken(ac.jwtSecret, user, ac.tokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

// Logout godoc
// @Summary Log out
// @Description Tokens are stateless and expire on their own; clients discard them
// @Tags auth
// @Success 204
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/auth/token/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
