//go:build integration

package database

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// startPostgres runs a throwaway Postgres and returns its connection settings
func startPostgres(t *testing.T) DatabaseConfig {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("foodgram"),
		postgres.WithUsername("foodgram"),
		postgres.WithPassword("foodgram"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	parsed, err := url.Parse(connStr)
	require.NoError(t, err)
	password, _ := parsed.User.Password()

	return DatabaseConfig{
		Driver:   "postgres",
		Host:     parsed.Hostname(),
		Port:     parsed.Port(),
		User:     parsed.User.Username(),
		Password: password,
		Name:     "foodgram",
		SSLMode:  "disable",
	}
}

func TestPostgresMigrateSeedAndConstraints(t *testing.T) {
	cfg := startPostgres(t)

	db, err := InitDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	require.NoError(t, SeedReferenceData(db))

	author := models.User{Email: "a@example.com", Username: "a", Password: "x"}
	require.NoError(t, db.Create(&author).Error)
	recipe := models.Recipe{AuthorID: author.ID, Name: "Soup", Text: "Boil", Image: "img", CookingTime: 5}
	require.NoError(t, db.Create(&recipe).Error)

	fav := models.Favorite{UserID: author.ID, RecipeID: recipe.ID}
	require.NoError(t, db.Create(&fav).Error)
	err = db.Create(&models.Favorite{UserID: author.ID, RecipeID: recipe.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// The foreign key cascade removes favorites together with the recipe
	require.NoError(t, db.Delete(&models.Recipe{}, recipe.ID).Error)
	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)
}
