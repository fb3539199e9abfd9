package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{name: "store and retrieve bytes", key: "test-key-1", value: []byte("test-value"), ttl: time.Minute},
		{name: "store and retrieve json", key: "test-key-2", value: []byte(`[{"foodId":"I0402401","score":0.85}]`), ttl: time.Minute},
		{name: "store with short TTL", key: "test-key-3", value: []byte("expires-soon"), ttl: time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			// For short TTL test, wait for expiration
			if tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
				if _, err := cache.Get(ctx, tt.key); !errors.Is(err, domain.ErrCacheMiss) {
					t.Errorf("Get() after expiration error = %v, want ErrCacheMiss", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	value := []byte("abc")
	_ = cache.Set(ctx, "k", value, time.Minute)
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Get() = %q, want %q", got, "abc")
	}
	got[1] = 'y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Get() after caller mutation = %q, want %q", again, "abc")
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()

	_, err := cache.Get(context.Background(), "non-existent-key")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "test-key", []byte("test-value"), time.Minute)
	if _, err := cache.Get(ctx, "test-key"); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, "test-key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, "test-key"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Get_Expired(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "live", []byte("v"), time.Minute)
	_ = cache.Set(ctx, "expired", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	tests := []struct {
		key  string
		want error
	}{
		{key: "live", want: nil},
		{key: "expired", want: domain.ErrCacheMiss},
		{key: "missing", want: domain.ErrCacheMiss},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if _, err := cache.Get(ctx, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("Get(%q) error = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestMemoryCache_CleanupSweepsExpired(t *testing.T) {
	cache := NewMemoryCache(5 * time.Millisecond)
	defer cache.Close()
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("v"), time.Millisecond)
	_ = cache.Set(ctx, "long", []byte("v"), time.Hour)

	deadline := time.Now().Add(time.Second)
	for cache.Size() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1 after sweep", cache.Size())
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("key-%d", i), []byte("v"), time.Minute)
	}
	if cache.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", cache.Size())
	}
	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(0)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if err := cache.Set(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Errorf("Set() after Close error = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			for j := 0; j < 100; j++ {
				_ = cache.Set(ctx, key, []byte("value"), time.Minute)
				_, _ = cache.Get(ctx, key)
				if j%10 == 0 {
					_ = cache.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()

	if cache.Size() != 5 {
		t.Errorf("Size() = %d, want 5", cache.Size())
	}
}
