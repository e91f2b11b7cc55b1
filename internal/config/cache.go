package config

import "time"

// CacheConfig defines settings for the response cache middleware.  Only the
// public catalog and movie search routes are cached; board routes change on
// every drop and are never wrapped.  Each route brings its own key function,
// so there is no key strategy here.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int // larger responses are served but not stored
}

// LoadCacheConfig reads CACHE_* variables.  All methods are upper-cased.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(envStr("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 10*time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "moodboard:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}
