package config

import (
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  Paths lists the exact request paths that may be cached; the
// public listings are the default.  TTL defines the lifetime of cache
// entries.  Prefix and MaxBodyBytes control namespacing and the largest
// response that is stored.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    Paths        map[string]bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

// DefaultCachePaths are the public listing endpoints.
const DefaultCachePaths = "/api/users/public,/api/skills/offered,/api/skills/wanted,/api/skills/categories"

// LoadCacheConfig reads environment variables to build a CacheConfig.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseSet(getenv("CACHE_METHODS", "GET"), strings.ToUpper),
        Paths:        parseSet(getenv("CACHE_PATHS", DefaultCachePaths), nil),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        Prefix:       getenv("CACHE_PREFIX", "cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}

func parseSet(s string, norm func(string) string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(p)
        if norm != nil {
            p = norm(p)
        }
        if p != "" {
            m[p] = true
        }
    }
    return m
}
