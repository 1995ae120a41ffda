package controllers

import (
	"net/http"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags(t *testing.T) {
	s := newTestServer(t)
	_, user := s.user("cook", models.RoleUser)
	_, admin := s.user("boss", models.RoleAdmin)

	w := s.do(http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Tag](t, w), 3)

	w = s.do(http.MethodGet, "/api/tags/"+itoa(breakfastID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "breakfast", decode[models.Tag](t, w).Slug)

	tag := TagRequest{Name: "Dessert", Color: "#FF00AA", Slug: "dessert"}

	w = s.do(http.MethodPost, "/api/tags", "", tag)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/tags", user, tag)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/tags", admin, TagRequest{Name: "Bad", Color: "red", Slug: "not a slug"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode[models.APIError](t, w).Details
	assert.Contains(t, details, "color")
	assert.Contains(t, details, "slug")

	w = s.do(http.MethodPost, "/api/tags", admin, tag)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotZero(t, decode[models.Tag](t, w).ID)

	w = s.do(http.MethodPost, "/api/tags", admin, tag)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ErrConflict, decode[models.APIError](t, w).Code)
}

func TestIngredients(t *testing.T) {
	s := newTestServer(t)
	_, admin := s.user("boss", models.RoleAdmin)

	w := s.do(http.MethodGet, "/api/ingredients?name=OIL", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]models.Ingredient](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, "olive oil", found[0].Name)

	w = s.do(http.MethodGet, "/api/ingredients/"+itoa(milkID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ml", decode[models.Ingredient](t, w).MeasurementUnit)

	w = s.do(http.MethodGet, "/api/ingredients/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/ingredients", admin, IngredientRequest{Name: "saffron", MeasurementUnit: "pinch"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "saffron", decode[models.Ingredient](t, w).Name)

	w = s.do(http.MethodPost, "/api/ingredients", admin, IngredientRequest{Name: "pepper"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[models.APIError](t, w).Details, "measurement_unit")
}

func TestClients(t *testing.T) {
	s := newTestServer(t)
	_, owner := s.user("owner", models.RoleUser)
	_, other := s.user("other", models.RoleUser)

	w := s.do(http.MethodPost, "/api/clients", owner, ClientRequest{Name: "grocery app", Domain: "https://grocery.example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	clientID, _ := created["client_id"].(string)
	require.NotEmpty(t, clientID)
	assert.NotEmpty(t, created["client_secret"])
	assert.Equal(t, "read", created["scopes"])

	w = s.do(http.MethodGet, "/api/clients", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.OAuthClient](t, w), 1)
	assert.NotContains(t, w.Body.String(), "secret")

	w = s.do(http.MethodGet, "/api/clients", other, nil)
	assert.Empty(t, decode[[]models.OAuthClient](t, w))

	w = s.do(http.MethodDelete, "/api/clients/"+clientID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, "/api/clients/"+clientID, owner, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/api/clients", owner, ClientRequest{Name: "bad", Domain: "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
