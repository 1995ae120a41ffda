package auth

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	log "github.com/sirupsen/logrus"
)

// HandleToken handles the token endpoint for the client credentials grant
// @Summary Token Endpoint
// @Description Obtain an access token for an API client using the client credentials grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param scope formData string false "Requested scope, defaults to the client's scopes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	if grantType != string(oauth2.ClientCredentials) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}
	o.handleClientCredentials(c)
}

func (o *OAuthService) handleClientCredentials(c *gin.Context) {
	clientID := c.PostForm("client_id")
	clientSecret := c.PostForm("client_secret")

	// Validate client
	var client models.OAuthClient
	if err := o.db.WithContext(c.Request.Context()).Where("id = ?", clientID).First(&client).Error; err != nil {
		log.WithField("client_id", clientID).Warn("Token request for unknown client")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	// Verify client secret against the stored bcrypt hash
	if !client.VerifyPassword(clientSecret) {
		log.WithField("client_id", clientID).Warn("Token request with invalid client secret")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	scope := c.PostForm("scope")
	if scope == "" {
		scope = client.Scopes
	}

	ti, err := o.server.Manager.GenerateAccessToken(c.Request.Context(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        scope,
		Request:      c.Request,
	})
	if err != nil {
		log.WithError(err).WithField("client_id", clientID).Error("Token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_generation_failed"})
		return
	}

	log.WithFields(log.Fields{
		"client_id": clientID,
		"user_id":   client.UserID,
	}).Info("Access token issued")

	c.JSON(http.StatusOK, gin.H{
		"access_token": ti.GetAccess(),
		"token_type":   "Bearer",
		"expires_in":   int64(ti.GetAccessExpiresIn().Seconds()),
		"scope":        ti.GetScope(),
	})
}
