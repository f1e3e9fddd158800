package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgehanKilicarslan/library-api/internal/testutil"
)

func setupRedisLimiter(t *testing.T, limit, windowSeconds int64) (*redisRateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testutil.TestConfig()
	cfg.RateLimitRequests = limit
	cfg.RateLimitWindow = windowSeconds

	limiter := NewRateLimiter(client, cfg, testutil.TestLogger()).(*redisRateLimiter)
	return limiter, mr
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	limiter, mr := setupRedisLimiter(t, 3, 60)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other clients have their own counter
	allowed, err = limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, allowed)

	key := limiter.windowKey("10.0.0.1")
	assert.Equal(t, "4", mustGet(t, mr, key))
	assert.Equal(t, 60*time.Second, mr.TTL(key))
}

func TestRedisRateLimiter_NewWindowResets(t *testing.T) {
	limiter, _ := setupRedisLimiter(t, 1, 60)
	current := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }
	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)

	current = current.Add(time.Minute)
	allowed, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.True(t, allowed)
}

func TestRedisRateLimiter_Disabled(t *testing.T) {
	limiter, mr := setupRedisLimiter(t, 0, 60)

	allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Empty(t, mr.Keys())
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	limiter, mr := setupRedisLimiter(t, 1, 60)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
	assert.True(t, allowed)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	value, err := mr.Get(key)
	require.NoError(t, err)
	return value
}

type stubLimiter struct {
	allowed bool
	err     error
}

func (s stubLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return s.allowed, s.err
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		limiter        RateLimiter
		expectedStatus int
	}{
		{"allowed", stubLimiter{allowed: true}, http.StatusOK},
		{"limited", stubLimiter{allowed: false}, http.StatusRequestTimeout},
		{"limiter error fails open", stubLimiter{allowed: true, err: errors.New("redis down")}, http.StatusOK},
		{"no-op", NewNoOpRateLimiter(testutil.TestLogger()), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/books", RateLimit(tt.limiter, testutil.TestLogger()), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusRequestTimeout {
				assert.Contains(t, w.Body.String(), "Rate limit exceeded, please try again later some time.")
				assert.Contains(t, w.Body.String(), `"status":"fail"`)
			}
		})
	}
}
