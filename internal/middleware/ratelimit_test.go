package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/anshulagrawal2902/MSS/internal/config"
)

func limiterEnv(t *testing.T, cfg config.RateLimitConfig) (*echo.Echo, echo.MiddlewareFunc) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return echo.New(), NewTokenBucket(cfg, rdb)
}

func hit(e *echo.Echo, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/operations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec
}

func TestTokenBucketLimits(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour, // no refill within the test
		TTL:            time.Hour,
		KeyStrategy:    "user",
		Prefix:         "rl-test",
	}
	e, mw := limiterEnv(t, cfg)

	for i := 0; i < cfg.Capacity; i++ {
		if rec := hit(e, mw); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d, want 200", i+1, rec.Code)
		}
	}

	rec := hit(e, mw)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status=%d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After header")
	}
}

func TestTokenBucketHeaders(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "user",
		Prefix:         "rl-test",
	}
	e, mw := limiterEnv(t, cfg)

	rec := hit(e, mw)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("X-RateLimit-Limit=%q, want 5", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Fatalf("X-RateLimit-Remaining=%q, want 4", got)
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	e, mw := limiterEnv(t, config.RateLimitConfig{Enabled: false})

	for i := 0; i < 50; i++ {
		if rec := hit(e, mw); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d, want 200", i+1, rec.Code)
		}
	}
}

func TestTokenBucketNilClientPassesThrough(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)

	for i := 0; i < 10; i++ {
		if rec := hit(e, mw); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status=%d, want 200", i+1, rec.Code)
		}
	}
}
