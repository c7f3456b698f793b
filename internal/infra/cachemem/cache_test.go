package cachemem

import (
	"context"
	"testing"
	"time"

	"agentgate/internal/domain"
)

func TestCache_PutGet(t *testing.T) {
	cache := New()
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
	cache := New()
	_, ok, err := cache.Get(context.Background(), "exchange:subject:ghost")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("expected miss")
	}
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	value := domain.AuthContext{Token: "svc-abc", Subject: "user-1"}
	if err := cache.Put(ctx, "key", value, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok, _ := cache.Get(ctx, "key"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := cache.Get(ctx, "key"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := cache.Put(ctx, "key", domain.AuthContext{Token: "svc"}, 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	now = now.Add(24 * time.Hour)
	if _, ok, _ := cache.Get(ctx, "key"); !ok {
		t.Fatal("zero TTL entry must not expire")
	}
}
