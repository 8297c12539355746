package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStore_TTLExpiry(t *testing.T) {
	s := NewStore(time.Minute)
	now := time.Now()
	s.clock = func() time.Time { return now }
	ctx := context.Background()

	s.Set(ctx, "k", "v")
	if v, ok := s.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("Get = %v, %v; want v, true", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatal("expired entry still served")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	s := NewStore(0)
	now := time.Now()
	s.clock = func() time.Time { return now }
	ctx := context.Background()

	s.Set(ctx, "k", 42)
	now = now.Add(24 * time.Hour)
	if v, ok := s.Get(ctx, "k"); !ok || v != 42 {
		t.Fatalf("Get = %v, %v; want 42, true", v, ok)
	}
}

func TestStore_GetOrLoad(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()
	calls := 0

	loader := func(context.Context) (any, error) {
		calls++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		v, err := s.GetOrLoad(ctx, "k", loader)
		if err != nil {
			t.Fatal(err)
		}
		if v != "loaded" {
			t.Fatalf("GetOrLoad = %v", v)
		}
	}
	if calls != 1 {
		t.Fatalf("loader ran %d times, want 1", calls)
	}
}

func TestStore_GetOrLoadDoesNotCacheErrors(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()
	calls := 0
	sentinel := errors.New("upstream down")

	loader := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, sentinel
		}
		return "ok", nil
	}

	if _, err := s.GetOrLoad(ctx, "k", loader); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	v, err := s.GetOrLoad(ctx, "k", loader)
	if err != nil {
		t.Fatal(err)
	}
	if v != "ok" {
		t.Fatalf("retry after error = %v, want ok", v)
	}
}

func TestStore_Purge(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := context.Background()

	s.Set(ctx, "a", 1)
	s.Set(ctx, "b", 2)
	s.Purge(ctx)

	if _, ok := s.Get(ctx, "a"); ok {
		t.Fatal("purge left entry a")
	}
	if _, ok := s.Get(ctx, "b"); ok {
		t.Fatal("purge left entry b")
	}
}
