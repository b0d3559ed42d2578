package config

import "time"

// RateLimitConfig sizes the token bucket in front of the mutating session
// routes.  A bucket holds at most Burst tokens and refills continuously at
// Rate tokens per second; one request spends one token.
type RateLimitConfig struct {
	Enabled bool          // RATE_LIMIT_ENABLED
	Burst   int           // RATE_LIMIT_BURST
	Rate    float64       // RATE_LIMIT_RATE, tokens per second
	IdleTTL time.Duration // RATE_LIMIT_IDLE_TTL; buckets untouched this long are dropped
	Scope   string        // RATE_LIMIT_SCOPE: ip, route or ip_route
	Prefix  string        // RATE_LIMIT_PREFIX
}

// LoadRateLimitConfig reads the RATE_LIMIT_* variables and clamps them to
// workable values.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Burst:   envInt("RATE_LIMIT_BURST", 30),
		Rate:    envFloat("RATE_LIMIT_RATE", 1),
		IdleTTL: envDur("RATE_LIMIT_IDLE_TTL", 10*time.Minute),
		Scope:   getenv("RATE_LIMIT_SCOPE", "ip_route"),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	// A bucket must live long enough to refill completely.
	if full := time.Duration(float64(cfg.Burst) / cfg.Rate * float64(time.Second)); cfg.IdleTTL < full {
		cfg.IdleTTL = full
	}
	return cfg
}
