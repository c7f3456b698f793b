package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisLimiter_AllowsWithinLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisLimiter(mr.Addr(), "", 0, nil)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := limiter.Allow(ctx, "rl:subject:user-1", 2, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !decision.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	decision, err := limiter.Allow(ctx, "rl:subject:user-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if decision.Allowed {
		t.Fatal("third request should be limited")
	}
}

func TestRedisLimiter_WindowReset(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisLimiter(mr.Addr(), "", 0, nil)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	ctx := context.Background()

	if decision, _ := limiter.Allow(ctx, "rl:k", 1, time.Minute); !decision.Allowed {
		t.Fatal("first request should be allowed")
	}
	if decision, _ := limiter.Allow(ctx, "rl:k", 1, time.Minute); decision.Allowed {
		t.Fatal("second request should be limited")
	}

	mr.FastForward(2 * time.Minute)
	if decision, _ := limiter.Allow(ctx, "rl:k", 1, time.Minute); !decision.Allowed {
		t.Fatal("request after expiry should be allowed")
	}
}

func TestRedisLimiter_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisLimiter(mr.Addr(), "", 0, nil)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	mr.Close()

	if _, err := limiter.Allow(context.Background(), "rl:k", 1, time.Minute); err == nil {
		t.Fatal("expected error when redis is down")
	}
}
