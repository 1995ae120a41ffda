package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// OAuthClient is an API client registered by a user. Tokens issued to it act on
// behalf of that user, e.g. a grocery app pulling the shopping list.
type OAuthClient struct {
	ID         string    `gorm:"primaryKey" json:"client_id"`
	Secret     string    `gorm:"not null" json:"-"`
	Name       string    `json:"name"`
	Domain     string    `json:"domain"`
	UserID     uint      `gorm:"index" json:"-"`
	Scopes     string    `json:"scopes"`      // Space-separated list of allowed scopes
	GrantTypes string    `json:"grant_types"` // Space-separated, only "client_credentials" is served
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"-"`
}

func (OAuthClient) TableName() string {
	return "oauth_clients"
}

// The methods below satisfy oauth2.ClientInfo and oauth2.ClientPasswordVerifier.

func (c *OAuthClient) GetID() string     { return c.ID }
func (c *OAuthClient) GetSecret() string { return c.Secret }
func (c *OAuthClient) GetDomain() string { return c.Domain }
func (c *OAuthClient) IsPublic() bool    { return false }

func (c *OAuthClient) GetUserID() string {
	if c.UserID == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(c.UserID), 10)
}

// VerifyPassword compares a plain client secret against the stored bcrypt hash
func (c *OAuthClient) VerifyPassword(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Secret), []byte(secret)) == nil
}
