package memorycache

import (
	"context"
	"fmt"
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

func TestCache_SetAndGet(t *testing.T) {
	cache := New[string](&Config{DefaultTTL: time.Minute, EnableMetrics: true})
	ctx := context.Background()

	if err := cache.Set(ctx, "business:1", "value1", 0); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	value, found := cache.Get(ctx, "business:1")
	if !found {
		t.Error("expected to find business:1")
	}
	if value != "value1" {
		t.Errorf("expected value1, got %v", value)
	}

	if _, found = cache.Get(ctx, "nonexistent"); found {
		t.Error("expected not to find nonexistent key")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[int](&Config{DefaultTTL: time.Minute, Now: clock.Now})
	ctx := context.Background()

	cache.Set(ctx, "short", 1, 50*time.Millisecond)
	cache.Set(ctx, "default", 2, 0)

	if _, found := cache.Get(ctx, "short"); !found {
		t.Error("expected to find short before expiration")
	}

	clock.Advance(100 * time.Millisecond)
	if _, found := cache.Get(ctx, "short"); found {
		t.Error("expected not to find short after expiration")
	}
	if _, found := cache.Get(ctx, "default"); !found {
		t.Error("expected default TTL entry to survive 100ms")
	}

	clock.Advance(time.Minute)
	if _, found := cache.Get(ctx, "default"); found {
		t.Error("expected default TTL entry to expire after a minute")
	}
}

func TestCache_NoTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[int](&Config{Now: clock.Now})
	ctx := context.Background()

	cache.Set(ctx, "k", 1, 0)
	clock.Advance(24 * time.Hour)
	if _, found := cache.Get(ctx, "k"); !found {
		t.Error("expected entry without TTL to survive")
	}
}

func TestCache_LRUEviction(t *testing.T) {
	cache := New[int](&Config{MaxEntries: 3, EnableMetrics: true})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		cache.Set(ctx, fmt.Sprintf("k%d", i), i, 0)
	}

	if cache.Len() != 3 {
		t.Errorf("expected 3 items after eviction, got %d", cache.Len())
	}
	if _, found := cache.Get(ctx, "k9"); !found {
		t.Error("expected to find most recent item k9")
	}
	if _, found := cache.Get(ctx, "k0"); found {
		t.Error("expected oldest item k0 to be evicted")
	}
	if got := cache.Metrics().KeysEvicted; got != 7 {
		t.Errorf("expected 7 evictions, got %d", got)
	}
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	cache := New[int](&Config{MaxEntries: 2})
	ctx := context.Background()

	cache.Set(ctx, "a", 1, 0)
	cache.Set(ctx, "b", 2, 0)
	cache.Get(ctx, "a")
	cache.Set(ctx, "c", 3, 0)

	if _, found := cache.Get(ctx, "a"); !found {
		t.Error("expected recently read item a to survive eviction")
	}
	if _, found := cache.Get(ctx, "b"); found {
		t.Error("expected b to be evicted")
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	cache := New[string](&Config{})
	ctx := context.Background()

	cache.Set(ctx, "key1", "value1", 0)
	cache.Set(ctx, "key2", "value2", 0)

	if err := cache.Delete(ctx, "key1"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, found := cache.Get(ctx, "key1"); found {
		t.Error("expected not to find key1 after deletion")
	}
	if err := cache.Delete(ctx, "nonexistent"); err != nil {
		t.Fatalf("delete of non-existent key should not error: %v", err)
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("expected 0 items after clear, got %d", cache.Len())
	}
}

func TestCache_Range(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cache := New[int](&Config{Now: clock.Now})
	ctx := context.Background()

	cache.Set(ctx, "live1", 1, 0)
	cache.Set(ctx, "live2", 2, 0)
	cache.Set(ctx, "stale", 3, time.Second)
	clock.Advance(2 * time.Second)

	seen := map[string]int{}
	cache.Range(ctx, func(key string, value int) bool {
		seen[key] = value
		return true
	})

	if len(seen) != 2 || seen["live1"] != 1 || seen["live2"] != 2 {
		t.Errorf("unexpected range result: %v", seen)
	}
	if cache.Len() != 2 {
		t.Errorf("expected expired entry to be dropped during range, len = %d", cache.Len())
	}

	count := 0
	cache.Range(ctx, func(string, int) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("expected range to stop after first entry, visited %d", count)
	}
}

func TestCache_Metrics(t *testing.T) {
	cache := New[string](&Config{EnableMetrics: true})
	ctx := context.Background()

	metrics := cache.Metrics()
	if metrics.Hits != 0 || metrics.Misses != 0 {
		t.Errorf("expected 0 hits and misses initially, got %d hits and %d misses", metrics.Hits, metrics.Misses)
	}

	cache.Set(ctx, "key1", "value1", 0)
	cache.Get(ctx, "key1")
	cache.Get(ctx, "nonexistent")

	metrics = cache.Metrics()
	if metrics.Hits != 1 || metrics.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", metrics.Hits, metrics.Misses)
	}
	if metrics.HitRate() != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", metrics.HitRate())
	}
}

func TestCache_MetricsDisabled(t *testing.T) {
	cache := New[string](&Config{})
	cache.Get(context.Background(), "missing")
	if m := cache.Metrics(); m.Misses != 0 {
		t.Errorf("expected no metrics when disabled, got %+v", m)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := New[int](&Config{MaxEntries: 5, EnableMetrics: true})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Set(ctx, fmt.Sprintf("k%d", id), j, 0)
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cache.Get(ctx, fmt.Sprintf("k%d", id))
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 5 {
		t.Errorf("expected at most 5 entries, got %d", cache.Len())
	}
}
