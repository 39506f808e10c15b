package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache() (*MemoryCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(0)
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_SetGet(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	if err := c.Set(ctx, "k", payload{Name: "a.txt"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "a.txt" {
		t.Errorf("Expected a.txt, got %q", got.Name)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "k", 1, time.Second)
	clock.Advance(999 * time.Millisecond)

	var v int
	if err := c.Get(ctx, "k", &v); err != nil {
		t.Fatalf("Expected hit before expiry, got %v", err)
	}

	clock.Advance(time.Millisecond)
	if err := c.Get(ctx, "k", &v); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Expected ErrCacheMiss after expiry, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be dropped on read, have %d", c.Len())
	}
}

func TestMemoryCache_SweepDropsExpired(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "short", 1, time.Second)
	_ = c.Set(ctx, "forever", 1, 0)
	clock.Advance(2 * time.Second)
	c.sweep()

	if c.Len() != 1 {
		t.Fatalf("Expected one entry after sweep, have %d", c.Len())
	}
	if ok, _ := c.Exists(ctx, "forever"); !ok {
		t.Error("Entry without expiration must survive the sweep")
	}
}

func TestMemoryCache_SetNX(t *testing.T) {
	c, clock := newTestCache()
	ctx := context.Background()

	ok, _ := c.SetNX(ctx, "lock", "a", time.Second)
	if !ok {
		t.Fatal("First SetNX must succeed")
	}
	ok, _ = c.SetNX(ctx, "lock", "b", time.Second)
	if ok {
		t.Fatal("Second SetNX must fail while the key is live")
	}
	clock.Advance(time.Second)
	ok, _ = c.SetNX(ctx, "lock", "c", time.Second)
	if !ok {
		t.Fatal("SetNX must succeed once the key expired")
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c, _ := newTestCache()
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1, 0)
	_ = c.Set(ctx, "b", 2, 0)
	_ = c.Delete(ctx, "a", "b", "missing")

	if c.Len() != 0 {
		t.Errorf("Expected empty cache, have %d", c.Len())
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}
