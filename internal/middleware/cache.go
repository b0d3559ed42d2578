package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-session-booking/internal/config"
)

// bodyRecorder copies the response body (up to limit bytes) while it is
// forwarded to the client.
type bodyRecorder struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.truncated {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.truncated = true
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cachedResponse is what lands in Redis for one key.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// perRequestHeaders belong to the response that was recorded, not to the
// ones replayed from it.
var perRequestHeaders = []string{
	echo.HeaderXRequestID,
	echo.HeaderContentLength,
	echo.HeaderSetCookie,
	"Date",
	"X-Cache",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	echo.HeaderRetryAfter,
}

// versionKey holds a counter bumped by every invalidation.  It sits outside
// the "<prefix>:" namespace so purging never resets it.
func versionKey(cfg config.CacheConfig) string {
	return cfg.Prefix + "-version"
}

// cacheKey builds "<prefix>:v<version>:<sha1>".  A response recorded
// before an invalidation carries the old version and is never looked up
// again, even if its write lands after the purge.
func cacheKey(cfg config.CacheConfig, version string, c echo.Context) string {
	r := c.Request()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", c.Path()}
	case "method_route":
		parts = []string{"method", r.Method, "route", c.Path()}
	default: // "route_query"
		parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:v%s:%x", cfg.Prefix, version, sum[:])
}

// storeScript writes the entry only while the version it was recorded
// under is still current.
var storeScript = redis.NewScript(`
if (redis.call('GET', KEYS[1]) or '0') ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

func currentVersion(ctx context.Context, rdb *redis.Client, cfg config.CacheConfig) (string, error) {
	v, err := rdb.Get(ctx, versionKey(cfg)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return v, err
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRedisCache serves cacheable requests (GET /sessions in practice) from
// Redis when a copy exists, and stores 200 responses otherwise.  It must be
// paired with NewCacheInvalidator on the mutating routes, or clients keep
// seeing a stale list until the TTL runs out.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			version, err := currentVersion(ctx, rdb, cfg)
			if err != nil {
				c.Logger().Warnf("[cache] bypassed: %v", err)
				return next(c)
			}
			key := cacheKey(cfg, version, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var hit cachedResponse
				if json.Unmarshal(raw, &hit) == nil && hit.Status != 0 {
					h := c.Response().Header()
					for k, vals := range hit.Header {
						h[k] = append([]string(nil), vals...)
					}
					h.Set("X-Cache", "HIT")
					c.Response().WriteHeader(hit.Status)
					_, _ = c.Response().Write(hit.Body)
					return nil
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.truncated {
				return nil
			}
			entry := cachedResponse{Status: rec.status, Header: c.Response().Header().Clone(), Body: rec.buf.Bytes()}
			for _, h := range perRequestHeaders {
				entry.Header.Del(h)
			}
			payload, err := json.Marshal(entry)
			if err != nil {
				return nil
			}
			// Detached from the request so a client hanging up does not abort the write.
			err = storeScript.Run(context.Background(), rdb, []string{versionKey(cfg), key},
				version, payload, cfg.TTL.Milliseconds()).Err()
			if err != nil {
				c.Logger().Warnf("[cache] store failed for key=%s: %v", key, err)
			}
			return nil
		}
	}
}

// NewCacheInvalidator bumps the cache version and drops every cached
// response under cfg.Prefix once a request has succeeded.  Any successful
// mutation changes the session list, so nothing finer-grained is tracked.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				return err
			}
			ctx := c.Request().Context()
			if ierr := rdb.Incr(ctx, versionKey(cfg)).Err(); ierr != nil {
				c.Logger().Warnf("[cache] version bump failed for prefix=%s: %v", cfg.Prefix, ierr)
			}
			if derr := purgePrefix(ctx, rdb, cfg.Prefix); derr != nil {
				c.Logger().Warnf("[cache] invalidation failed for prefix=%s: %v", cfg.Prefix, derr)
			}
			return nil
		}
	}
}

func purgePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
