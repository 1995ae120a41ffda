package auth

import (
	"context"
	"time"

	"github.com/go-oauth2/oauth2/v4"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// OAuthService issues access tokens to registered API clients. Tokens act on
// behalf of the user owning the client and carry that user's role.
type OAuthService struct {
	server *server.Server
	db     *gorm.DB
}

func NewOAuthService(db *gorm.DB, jwtSecret string, tokenTTL time.Duration) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokenTTL})

	// Access tokens are JWTs the bearer middleware can validate without a lookup
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS256, db))

	// Configure token store
	manager.MustTokenStorage(NewGormTokenStore(db), nil)

	// Configure client store
	manager.MapClientStorage(NewGormClientStore(db))

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	return &OAuthService{
		server: srv,
		db:     db,
	}
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// PurgeExpiredTokens drops stored access tokens whose lifetime has ended
func (o *OAuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return NewGormTokenStore(o.db).PurgeExpired(ctx, time.Now())
}
