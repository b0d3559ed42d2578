package config

import "time"

// CacheConfig controls the Redis copy of session list responses.  Entries
// are keyed under Prefix and every mutation purges the whole prefix, so TTL
// is only a ceiling for entries nobody invalidated.
type CacheConfig struct {
	Enabled      bool            // CACHE_ENABLED
	Methods      map[string]bool // CACHE_METHODS, comma separated
	TTL          time.Duration   // CACHE_TTL
	KeyStrategy  string          // CACHE_KEY_STRATEGY: route, method_route or route_query
	Prefix       string          // CACHE_PREFIX
	MaxBodyBytes int             // CACHE_MAX_BODY_BYTES; larger responses are not stored
}

// LoadCacheConfig reads the CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      envSet("CACHE_METHODS", "GET"),
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       getenv("CACHE_PREFIX", "sessions-cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Second
	}
	return cfg
}
