package middleware

import (
    "fmt"
    "log/slog"
    "math"
    "net/http"
    "strconv"
    "strings"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "golang.org/x/time/rate"

    "github.com/iliyamo/skillswap/internal/config"
    "github.com/iliyamo/skillswap/internal/observability"
)

const msgRateLimited = "Too many requests, please try again later."

var limiterScript = redis.NewScript(`
    local key = KEYS[1]
    local now_ms = tonumber(ARGV[1])
    local capacity = tonumber(ARGV[2])
    local refill_tokens = tonumber(ARGV[3])
    local interval_ms = tonumber(ARGV[4])
    local ttl_seconds = tonumber(ARGV[5])

    local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
    local tokens = tonumber(state[1])
    local last_refill = tonumber(state[2])

    if tokens == nil or last_refill == nil then
        tokens = capacity
        last_refill = now_ms
    end

    if interval_ms > 0 and refill_tokens > 0 then
        local elapsed = math.max(0, now_ms - last_refill)
        local intervals = math.floor(elapsed / interval_ms)
        if intervals > 0 then
            tokens = math.min(capacity, tokens + (intervals * refill_tokens))
            last_refill = last_refill + (intervals * interval_ms)
        end
    end

    local allowed = 0
    local retry_after_ms = 0
    if tokens > 0 then
        allowed = 1
        tokens = tokens - 1
    else
        local until_next = interval_ms - (now_ms - last_refill)
        if until_next < 0 then until_next = 0 end
        retry_after_ms = until_next
    end

    redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
    redis.call('EXPIRE', key, ttl_seconds)

    return { allowed, tokens, retry_after_ms }
`)

// NewTokenBucket limits requests per key (see RateLimitConfig.KeyStrategy).
// With a Redis client the bucket is shared between instances; without one,
// or when Redis errors, an in-process bucket from x/time/rate is used.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    local := newLocalLimiter(cfg)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)

            var (
                d       decision
                backend = "local"
            )
            if rdb != nil {
                var err error
                d, err = redisDecision(c, cfg, rdb, key)
                if err == nil {
                    backend = "redis"
                } else {
                    observability.RedisErrorsTotal.WithLabelValues("ratelimit").Inc()
                    if cfg.Debug {
                        slog.Warn("ratelimit: redis error, using local bucket", "key", key, "err", err)
                    }
                    d = local.take(key)
                }
            } else {
                d = local.take(key)
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))

            if !d.allowed {
                secs := int(math.Ceil(d.retry.Seconds()))
                if secs < 1 { secs = 1 }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                observability.RateLimitedTotal.WithLabelValues(backend).Inc()
                if cfg.Debug {
                    slog.Info("ratelimit: blocked", "key", key, "retry_after", secs, "backend", backend)
                }
                return deny(c, http.StatusTooManyRequests, msgRateLimited)
            }
            if cfg.Debug {
                c.Response().Header().Set("X-RateLimit-Key", key)
            }
            return next(c)
        }
    }
}

type decision struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

func redisDecision(c echo.Context, cfg config.RateLimitConfig, rdb *redis.Client, key string) (decision, error) {
    args := []interface{}{
        time.Now().UnixMilli(),
        cfg.Capacity,
        cfg.RefillTokens,
        cfg.RefillInterval.Milliseconds(),
        int64(cfg.TTL / time.Second),
    }
    vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
    if err != nil {
        return decision{}, err
    }
    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        return decision{}, fmt.Errorf("unexpected script result %#v", vals)
    }
    return decision{
        allowed:   asInt64(arr[0]) == 1,
        remaining: asInt64(arr[1]),
        retry:     time.Duration(asInt64(arr[2])) * time.Millisecond,
    }, nil
}

// localLimiter keeps one rate.Limiter per key and forgets keys idle for
// longer than the configured TTL.
type localLimiter struct {
    cfg   config.RateLimitConfig
    mu    sync.Mutex
    keys  map[string]*localEntry
    sweep time.Time
}

type localEntry struct {
    lim  *rate.Limiter
    seen time.Time
}

func newLocalLimiter(cfg config.RateLimitConfig) *localLimiter {
    return &localLimiter{cfg: cfg, keys: map[string]*localEntry{}, sweep: time.Now()}
}

func (l *localLimiter) take(key string) decision {
    now := time.Now()
    l.mu.Lock()
    defer l.mu.Unlock()

    if now.Sub(l.sweep) > l.cfg.TTL {
        for k, e := range l.keys {
            if now.Sub(e.seen) > l.cfg.TTL {
                delete(l.keys, k)
            }
        }
        l.sweep = now
    }

    e, ok := l.keys[key]
    if !ok {
        e = &localEntry{lim: rate.NewLimiter(rate.Limit(l.cfg.PerSecond()), l.cfg.Capacity)}
        l.keys[key] = e
    }
    e.seen = now

    r := e.lim.ReserveN(now, 1)
    if !r.OK() {
        return decision{retry: l.cfg.RefillInterval}
    }
    if delay := r.DelayFrom(now); delay > 0 {
        r.CancelAt(now)
        return decision{retry: delay}
    }
    remaining := int64(e.lim.TokensAt(now))
    if remaining < 0 { remaining = 0 }
    return decision{allowed: true, remaining: remaining}
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64: return t
    case int32: return int64(t)
    case int: return int64(t)
    case float64: return int64(t)
    case float32: return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil { return n }
    }
    return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    parts := []string{cfg.Prefix}
    strategy := strings.ToLower(cfg.KeyStrategy)
    ip := c.RealIP()
    if ip == "" { ip = "unknown" }
    uid := currentUserID(c)
    route := c.Request().Method + " " + c.Path()

    switch strategy {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", uid)
    case "route":
        parts = append(parts, "route", route)
    case "ip_user":
        parts = append(parts, "ip", ip, "user", uid)
    case "ip_route":
        parts = append(parts, "ip", ip, "route", route)
    case "user_route":
        parts = append(parts, "user", uid, "route", route)
    default:
        parts = append(parts, "ip", ip, "user", uid, "route", route)
    }
    return strings.Join(parts, ":")
}
