package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestLimiter(t *testing.T, redis *miniredis.Miniredis, limit int) *FixedWindowLimiter {
	t.Helper()
	limiter, err := NewFixedWindowLimiter(Config{
		Addr:   redis.Addr(),
		Prefix: "test:ratelimit",
		Limit:  limit,
		Window: time.Minute,
	})
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter
}

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newTestLimiter(t, redis, 2)
	ctx := context.Background()

	if !limiter.Allow(ctx, "ip-1") {
		t.Fatalf("first request should pass")
	}
	if !limiter.Allow(ctx, "ip-1") {
		t.Fatalf("second request should pass")
	}
	if limiter.Allow(ctx, "ip-1") {
		t.Fatalf("third request should be blocked")
	}
	if !limiter.Allow(ctx, "ip-2") {
		t.Fatalf("other keys keep their own quota")
	}
}

func TestFixedWindowLimiterSetsWindowExpiry(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newTestLimiter(t, redis, 1)
	ctx := context.Background()

	if !limiter.Allow(ctx, "ip-1") {
		t.Fatalf("first request should pass")
	}
	if limiter.Allow(ctx, "ip-1") {
		t.Fatalf("second request should be blocked")
	}
	keys := redis.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one counter key, got %v", keys)
	}
	if ttl := redis.TTL(keys[0]); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected counter to expire within the window, ttl=%v", ttl)
	}
}

func TestFixedWindowLimiterRedisFailClosed(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter := newTestLimiter(t, redis, 1)
	redis.Close()
	if limiter.Allow(context.Background(), "ip-1") {
		t.Fatalf("limiter should fail closed on redis errors")
	}
}

func TestFixedWindowLimiterValidatesConfig(t *testing.T) {
	if _, err := NewFixedWindowLimiter(Config{Limit: 1, Window: time.Second}); err == nil {
		t.Fatalf("expected constructor error for empty redis addr")
	}
	if _, err := NewFixedWindowLimiter(Config{Addr: "127.0.0.1:6379", Window: time.Second}); err == nil {
		t.Fatalf("expected constructor error for zero limit")
	}
}
