package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-session-booking/internal/config"
)

// bucketScript refills a bucket for the time passed since its last use and
// tries to spend one token.  Tokens are fractional so slow rates refill
// smoothly.  Returns {allowed, whole tokens left, wait ms}.
var bucketScript = redis.NewScript(`
local burst = tonumber(ARGV[1])
local per_ms = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens = tonumber(state[1]) or burst
local at = tonumber(state[2]) or now
tokens = math.min(burst, tokens + math.max(0, now - at) * per_ms)

local allowed, wait = 0, 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
else
  wait = math.ceil((1 - tokens) / per_ms)
end

redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'at', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, math.floor(tokens), wait}
`)

type decision struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

func take(ctx context.Context, rdb *redis.Client, key string, cfg config.RateLimitConfig) (decision, error) {
	vals, err := bucketScript.Run(ctx, rdb, []string{key},
		cfg.Burst,
		cfg.Rate/1000,
		time.Now().UnixMilli(),
		cfg.IdleTTL.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return decision{}, err
	}
	if len(vals) != 3 {
		return decision{}, errors.New("unexpected bucket reply")
	}
	return decision{allowed: vals[0] == 1, remaining: vals[1], wait: time.Duration(vals[2]) * time.Millisecond}, nil
}

// NewTokenBucket throttles the mutating routes per client.  When Redis
// cannot answer the request is let through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			d, err := take(c.Request().Context(), rdb, key, cfg)
			if err != nil {
				slog.Warn("rate limit unavailable", "key", key, "err", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(d.remaining, 10))
			if d.allowed {
				return next(c)
			}
			secs := int((d.wait + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"info": "too many requests, retry in " + strconv.Itoa(secs) + "s",
			})
		}
	}
}

// rateKey names the bucket a request draws from.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.Scope) {
	case "ip":
		return cfg.Prefix + ":ip:" + ip
	case "route":
		return cfg.Prefix + ":route:" + route
	default:
		return cfg.Prefix + ":ip:" + ip + ":route:" + route
	}
}
