package middleware

import (
    "net/http"
    "net/http/httptest"
    "sync/atomic"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/skillswap/internal/config"
    "github.com/iliyamo/skillswap/internal/utils"
)

const testSecret = "test-secret"

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func rateCfg(capacity int) config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:        true,
        Capacity:       capacity,
        RefillTokens:   1,
        RefillInterval: time.Minute,
        TTL:            10 * time.Minute,
        KeyStrategy:    "ip",
        Prefix:         "rl",
    }
}

func do(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, target, nil)
    if token != "" {
        req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func token(t *testing.T, userID string) string {
    t.Helper()
    at, err := utils.NewAccessToken(testSecret, userID, time.Minute)
    require.NoError(t, err)
    return at.Token
}

func okHandler(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestTokenBucket_Redis(t *testing.T) {
    mr, rdb := setupRedis(t)
    e := echo.New()
    e.Use(NewTokenBucket(rateCfg(2), rdb))
    e.GET("/x", okHandler)

    require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/x", "").Code)
    rec := do(e, http.MethodGet, "/x", "")
    require.Equal(t, http.StatusOK, rec.Code)
    require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
    require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

    rec = do(e, http.MethodGet, "/x", "")
    require.Equal(t, http.StatusTooManyRequests, rec.Code)
    require.NotEmpty(t, rec.Header().Get("Retry-After"))
    require.JSONEq(t, `{"success":false,"message":"Too many requests, please try again later."}`, rec.Body.String())

    require.Len(t, mr.Keys(), 1)
    require.Equal(t, "rl:ip:192.0.2.1", mr.Keys()[0])
}

func TestTokenBucket_FallsBackWhenRedisDown(t *testing.T) {
    mr, rdb := setupRedis(t)
    mr.Close()

    e := echo.New()
    e.Use(NewTokenBucket(rateCfg(1), rdb))
    e.GET("/x", okHandler)

    require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/x", "").Code)
    rec := do(e, http.MethodGet, "/x", "")
    require.Equal(t, http.StatusTooManyRequests, rec.Code)
    require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucket_Disabled(t *testing.T) {
    cfg := rateCfg(1)
    cfg.Enabled = false
    e := echo.New()
    e.Use(NewTokenBucket(cfg, nil))
    e.GET("/x", okHandler)

    for i := 0; i < 3; i++ {
        require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/x", "").Code)
    }
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/api/skills/offered", nil)
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/api/skills/offered")
    c.Set(userIDKey, "u1")

    cfg := rateCfg(1)
    cfg.KeyStrategy = "user_route"
    require.Equal(t, "rl:user:u1:route:GET /api/skills/offered", buildRateKey(cfg, c))
    cfg.KeyStrategy = ""
    require.Equal(t, "rl:ip:192.0.2.1:user:u1:route:GET /api/skills/offered", buildRateKey(cfg, c))
}

func cacheCfg() config.CacheConfig {
    return config.CacheConfig{
        Enabled:      true,
        Methods:      map[string]bool{http.MethodGet: true},
        Paths:        map[string]bool{"/list": true},
        TTL:          time.Minute,
        Prefix:       "cache",
        MaxBodyBytes: 1 << 20,
    }
}

func TestRedisCache_HitMissAndInvalidate(t *testing.T) {
    _, rdb := setupRedis(t)
    var calls atomic.Int32

    e := echo.New()
    e.Use(InvalidateCache(cacheCfg(), rdb), NewRedisCache(cacheCfg(), rdb))
    e.GET("/list", func(c echo.Context) error {
        calls.Add(1)
        return c.JSON(http.StatusOK, echo.Map{"success": true, "n": calls.Load()})
    })
    e.GET("/other", okHandler)
    e.POST("/write", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
    e.POST("/broken", func(c echo.Context) error { return c.NoContent(http.StatusBadRequest) })

    first := do(e, http.MethodGet, "/list", "")
    require.Equal(t, "MISS", first.Header().Get("X-Cache"))
    second := do(e, http.MethodGet, "/list", "")
    require.Equal(t, "HIT", second.Header().Get("X-Cache"))
    require.Equal(t, first.Body.String(), second.Body.String())
    require.Equal(t, first.Header().Get(echo.HeaderContentType), second.Header().Get(echo.HeaderContentType))
    require.EqualValues(t, 1, calls.Load())

    require.Empty(t, do(e, http.MethodGet, "/other", "").Header().Get("X-Cache"))

    do(e, http.MethodPost, "/broken", "")
    require.Equal(t, "HIT", do(e, http.MethodGet, "/list", "").Header().Get("X-Cache"), "failed writes keep the cache")

    do(e, http.MethodPost, "/write", "")
    require.Equal(t, "MISS", do(e, http.MethodGet, "/list", "").Header().Get("X-Cache"))
    require.EqualValues(t, 2, calls.Load())
}

func TestRedisCache_SkipsErrors(t *testing.T) {
    _, rdb := setupRedis(t)
    e := echo.New()
    e.Use(NewRedisCache(cacheCfg(), rdb))
    e.GET("/list", func(c echo.Context) error { return c.NoContent(http.StatusServiceUnavailable) })

    do(e, http.MethodGet, "/list", "")
    require.Equal(t, "MISS", do(e, http.MethodGet, "/list", "").Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
    require.NoError(t, err)
    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    require.Equal(t, http.StatusOK, status)
    require.Equal(t, hdr, got)
    require.Equal(t, `{"a":1}`, string(body))

    _, _, _, ok = decodePayload([]byte{0, 1})
    require.False(t, ok)
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.GET("/me", func(c echo.Context) error { return c.String(http.StatusOK, UserID(c)) }, JWTAuth(testSecret))

    rec := do(e, http.MethodGet, "/me", "")
    require.Equal(t, http.StatusUnauthorized, rec.Code)
    require.Contains(t, rec.Body.String(), "Access token required")

    rec = do(e, http.MethodGet, "/me", "not-a-jwt")
    require.Equal(t, http.StatusUnauthorized, rec.Code)
    require.Contains(t, rec.Body.String(), "Invalid or expired token")

    rec = do(e, http.MethodGet, "/me", token(t, "u1"))
    require.Equal(t, http.StatusOK, rec.Code)
    require.Equal(t, "u1", rec.Body.String())
}

func TestOptionalAuthAndRequireSelf(t *testing.T) {
    e := echo.New()
    e.Use(OptionalAuth(testSecret))
    e.GET("/users/:userId", func(c echo.Context) error { return c.String(http.StatusOK, UserID(c)) }, RequireSelf("userId"))

    rec := do(e, http.MethodGet, "/users/u1", "")
    require.Equal(t, http.StatusOK, rec.Code, "anonymous callers pass")
    require.Empty(t, rec.Body.String())

    rec = do(e, http.MethodGet, "/users/u1", "garbage")
    require.Equal(t, http.StatusOK, rec.Code, "bad tokens are treated as anonymous")

    rec = do(e, http.MethodGet, "/users/u1", token(t, "u1"))
    require.Equal(t, http.StatusOK, rec.Code)
    require.Equal(t, "u1", rec.Body.String())

    rec = do(e, http.MethodGet, "/users/u1", token(t, "u2"))
    require.Equal(t, http.StatusForbidden, rec.Code)
    require.Contains(t, rec.Body.String(), msgNotOwner)
}
