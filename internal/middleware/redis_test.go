package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-session-booking/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// cachedApp serves state on GET /sessions behind the cache.  POST /sessions
// replaces state; POST /fail answers 400 without touching it.
type cachedApp struct {
	e      *echo.Echo
	state  string
	onRead func() // runs inside GET after state was read
}

func newCachedApp(t *testing.T, rdb *redis.Client) *cachedApp {
	t.Helper()
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{"GET": true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "sessions-cache",
	}
	app := &cachedApp{e: echo.New(), state: "v1"}
	app.e.Use(echomw.RequestID())
	app.e.GET("/sessions", func(c echo.Context) error {
		body := app.state
		if app.onRead != nil {
			app.onRead()
		}
		return c.String(http.StatusOK, body)
	}, NewRedisCache(cfg, rdb))
	invalidate := NewCacheInvalidator(cfg, rdb)
	app.e.POST("/sessions", func(c echo.Context) error {
		app.state = c.QueryParam("to")
		return c.String(http.StatusOK, "changed")
	}, invalidate)
	app.e.POST("/fail", func(c echo.Context) error {
		return c.String(http.StatusBadRequest, "no")
	}, invalidate)
	return app
}

func (a *cachedApp) serve(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestCacheServesHitWithFreshRequestID(t *testing.T) {
	_, rdb := newRedis(t)
	app := newCachedApp(t, rdb)

	first := app.serve(http.MethodGet, "/sessions")
	if first.Body.String() != "v1" || first.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first GET = %q, X-Cache=%q", first.Body.String(), first.Header().Get("X-Cache"))
	}
	app.state = "changed behind the cache"
	second := app.serve(http.MethodGet, "/sessions")
	if second.Body.String() != "v1" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second GET = %q, X-Cache=%q", second.Body.String(), second.Header().Get("X-Cache"))
	}
	ids := second.Header().Values(echo.HeaderXRequestID)
	if len(ids) != 1 || ids[0] == first.Header().Get(echo.HeaderXRequestID) {
		t.Errorf("hit request ids = %v, first was %q", ids, first.Header().Get(echo.HeaderXRequestID))
	}
	if !strings.HasPrefix(second.Header().Get(echo.HeaderContentType), "text/plain") {
		t.Errorf("content type not replayed: %q", second.Header().Get(echo.HeaderContentType))
	}
}

func TestCacheInvalidatedBySuccessfulMutation(t *testing.T) {
	_, rdb := newRedis(t)
	app := newCachedApp(t, rdb)

	app.serve(http.MethodGet, "/sessions")
	if rec := app.serve(http.MethodPost, "/sessions?to=v2"); rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d", rec.Code)
	}
	got := app.serve(http.MethodGet, "/sessions")
	if got.Body.String() != "v2" || got.Header().Get("X-Cache") != "MISS" {
		t.Errorf("GET after mutation = %q, X-Cache=%q", got.Body.String(), got.Header().Get("X-Cache"))
	}
}

func TestCacheKeptAfterFailedMutation(t *testing.T) {
	_, rdb := newRedis(t)
	app := newCachedApp(t, rdb)

	app.serve(http.MethodGet, "/sessions")
	if rec := app.serve(http.MethodPost, "/fail"); rec.Code != http.StatusBadRequest {
		t.Fatalf("POST /fail status = %d", rec.Code)
	}
	if got := app.serve(http.MethodGet, "/sessions"); got.Header().Get("X-Cache") != "HIT" {
		t.Errorf("4xx mutation purged the cache: X-Cache=%q", got.Header().Get("X-Cache"))
	}
}

func TestCacheDropsListReadBeforeMutation(t *testing.T) {
	_, rdb := newRedis(t)
	app := newCachedApp(t, rdb)

	// The mutation and its purge finish while the GET still holds v1.
	app.onRead = func() {
		app.onRead = nil
		app.serve(http.MethodPost, "/sessions?to=v2")
	}
	if got := app.serve(http.MethodGet, "/sessions"); got.Body.String() != "v1" {
		t.Fatalf("racing GET = %q", got.Body.String())
	}
	got := app.serve(http.MethodGet, "/sessions")
	if got.Body.String() != "v2" || got.Header().Get("X-Cache") != "MISS" {
		t.Errorf("GET after race = %q, X-Cache=%q; stale list was cached", got.Body.String(), got.Header().Get("X-Cache"))
	}
}

func TestTokenBucketThrottles(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Burst: 1, Rate: 0.01, IdleTTL: time.Hour, Scope: "ip", Prefix: "rl"}
	e := echo.New()
	e.POST("/sessions", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, NewTokenBucket(cfg, rdb))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	if first.Code != http.StatusOK || first.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("first = %d, remaining=%q", first.Code, first.Header().Get("X-RateLimit-Remaining"))
	}
	second := send()
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d, want 429", second.Code)
	}
	if ra := second.Header().Get("Retry-After"); ra == "" || ra == "0" {
		t.Errorf("Retry-After = %q", ra)
	}
	if !strings.Contains(second.Body.String(), "too many requests") {
		t.Errorf("body = %s", second.Body.String())
	}
}
