package cacheredis

import (
	"context"
	"testing"
	"time"

	"agentgate/internal/domain"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := New(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return cache, mr
}

func TestCache_PutGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	want := domain.AuthContext{Token: "svc-abc", Subject: "user-1", Kind: domain.CredentialUser}
	if err := cache.Put(ctx, "exchange:subject:user-1", want, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := cache.Get(ctx, "exchange:subject:user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t)
	if _, ok, err := cache.Get(context.Background(), "missing"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	if err := cache.Put(ctx, "key", domain.AuthContext{Token: "svc"}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := cache.Get(ctx, "key"); ok {
		t.Fatal("expected miss after TTL")
	}
}

func TestCache_NonPositiveTTLNotStored(t *testing.T) {
	cache, mr := newTestCache(t)
	if err := cache.Put(context.Background(), "key", domain.AuthContext{Token: "svc"}, 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	if mr.Exists("key") {
		t.Fatal("zero TTL entries must not be stored")
	}
}
