package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRecipeCreationRateLimiter(client, limit)
	fixed := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }
	return rl, mr
}

func TestRateLimiterIsAllowed(t *testing.T) {
	rl, mr := newTestLimiter(t, 2)
	ctx := context.Background()

	allowed, remaining, reset, err := rl.IsAllowed(ctx, "7")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), reset)

	allowed, remaining, _, err = rl.IsAllowed(ctx, "7")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, remaining)

	allowed, _, _, err = rl.IsAllowed(ctx, "7")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other users have their own window
	allowed, _, _, err = rl.IsAllowed(ctx, "8")
	require.NoError(t, err)
	assert.True(t, allowed)

	left, _, err := rl.GetRemainingRequests(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	keys := mr.Keys()
	require.NotEmpty(t, keys)
	assert.True(t, mr.TTL(keys[0]) > 0, "window keys expire")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl, mr := newTestLimiter(t, 1)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/recipes", func(c *gin.Context) {
		c.Set(ContextUserID, uint(7))
		c.Next()
	}, rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", nil))
		return w
	}

	w := send()
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Redis outage fails open
	mr.Close()
	w = send()
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Error"))
}

func TestRateLimiterRequiresUser(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/recipes", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recipes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
