package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/config"
	"github.com/iliyamo/healthsync/internal/utils"
)

const secret = "test-secret"

func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, userID+"@example.com", 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func do(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func setupRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestJWTAuthAndRequireSelf(t *testing.T) {
	e := echo.New()
	g := e.Group("", JWTAuth(secret))
	g.GET("/users/:user", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	}, RequireSelf("user"))

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/users/u1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "/users/u1", "Bearer junk").Code)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/users/u2", bearer(t, "u1")).Code)

	rec := do(e, http.MethodGet, "/users/u1", bearer(t, "u1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestPassThroughWithoutRedis(t *testing.T) {
	e := echo.New()
	calls := 0
	h := func(c echo.Context) error { calls++; return c.String(http.StatusOK, "ok") }
	rl := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour}
	cc := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute}
	e.GET("/x", h, NewTokenBucket(rl, nil, zap.NewNop()), NewRedisCache(cc, nil))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/x", "").Code)
	}
	assert.Equal(t, 3, calls)
}

func TestTokenBucketBlocksAfterCapacity(t *testing.T) {
	rdb := setupRedis(t)
	e := echo.New()
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: time.Hour, KeyStrategy: "user_route", Prefix: "rl",
	}
	e.POST("/ai", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		JWTAuth(secret), NewTokenBucket(cfg, rdb, zap.NewNop()))

	auth := bearer(t, "u1")
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/ai", auth).Code)
	rec := do(e, http.MethodPost, "/ai", auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(e, http.MethodPost, "/ai", auth)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// another user has its own bucket
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, "/ai", bearer(t, "u2")).Code)
}

func TestRedisCacheKeysOnConcretePath(t *testing.T) {
	rdb := setupRedis(t)
	e := echo.New()
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", KeyStrategy: "path_query", MaxBodyBytes: 1 << 20}
	calls := map[string]int{}
	e.GET("/dashboard/:user", func(c echo.Context) error {
		calls[c.Param("user")]++
		return c.JSON(http.StatusOK, echo.Map{"user": c.Param("user")})
	}, NewRedisCache(cfg, rdb))

	first := do(e, http.MethodGet, "/dashboard/a", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/dashboard/a", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	other := do(e, http.MethodGet, "/dashboard/b", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"user":"b"}`, other.Body.String())
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, calls)
}

func TestRedisCacheSkipsErrorsAndOversizedBodies(t *testing.T) {
	rdb := setupRedis(t)
	e := echo.New()
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 4}
	calls := 0
	e.GET("/big", func(c echo.Context) error { calls++; return c.String(http.StatusOK, "too large") }, NewRedisCache(cfg, rdb))
	e.GET("/fail", func(c echo.Context) error { calls++; return c.String(http.StatusInternalServerError, "x") }, NewRedisCache(cfg, rdb))

	do(e, http.MethodGet, "/big", "")
	rec := do(e, http.MethodGet, "/big", "")
	assert.Equal(t, "too large", rec.Body.String())
	do(e, http.MethodGet, "/fail", "")
	do(e, http.MethodGet, "/fail", "")
	assert.Equal(t, 4, calls)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, h, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
