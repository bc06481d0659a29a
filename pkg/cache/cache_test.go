package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	if _, hit, err := c.Get(ctx, "layout:abc"); hit || err != nil {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "layout:abc", []byte(`{"slots":[]}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit || string(data) != `{"slots":[]}` {
		t.Errorf("Get after Set = %q, %v, %v", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should be a miss")
	}

	// Delete is idempotent
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("deleted entry should be a miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	for _, key := range []string{"layout:a", "layout:b", "artifact:svg:a"} {
		if err := c.Set(ctx, key, []byte(key), 0); err != nil {
			t.Fatalf("Set(%q) error: %v", key, err)
		}
	}

	n, err := c.(Clearer).Clear(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v, want 3 entries", n, err)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("entry survived Clear")
	}
	if got := c.(*FileCache).Dir(); got != dir {
		t.Errorf("Dir() = %q, want %q", got, dir)
	}

	// Clearing an empty cache is fine
	if n, err := c.(Clearer).Clear(ctx); n != 0 || err != nil {
		t.Errorf("second Clear() = %d, %v", n, err)
	}
}

func TestFileCacheCanceled(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Set(ctx, "k", []byte("v"), 0); err == nil {
		t.Error("Set with a canceled context should fail")
	}
	if _, _, err := c.Get(ctx, "k"); err == nil {
		t.Error("Get with a canceled context should fail")
	}
}

func TestNullCacheClear(t *testing.T) {
	n, err := NewNullCache().(Clearer).Clear(context.Background())
	if n != 0 || err != nil {
		t.Errorf("Clear() = %d, %v", n, err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 1366, Height: 768})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Width: 768, Height: 1366})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Width: 1366, Height: 768}) {
		t.Error("LayoutKey should be deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:hash123:") {
		t.Errorf("LayoutKey unexpected: %s", lk1)
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	ak3 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg", ShowBoxes: true})
	if ak1 == ak3 {
		t.Error("ShowBoxes should change the artifact key")
	}
}

func TestScope(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := Scope(inner, "table", "123")

	if got, want := scoped.LayoutKey("abc", LayoutKeyOpts{}), "table:123:"+inner.LayoutKey("abc", LayoutKeyOpts{}); got != want {
		t.Errorf("LayoutKey = %s, want %s", got, want)
	}
	if got := scoped.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(got, "table:123:artifact:svg:abc:") {
		t.Errorf("ArtifactKey = %s", got)
	}

	if Scope(inner) != inner {
		t.Error("Scope without a namespace should return the inner keyer")
	}
	if got, want := Scope(nil, "p").LayoutKey("x", LayoutKeyOpts{}), "p:"+NewDefaultKeyer().LayoutKey("x", LayoutKeyOpts{}); got != want {
		t.Errorf("Scope(nil) LayoutKey = %s, want %s", got, want)
	}
}

func TestHashJSON(t *testing.T) {
	if HashJSON(map[string]int{"a": 1}) != HashJSON(map[string]int{"a": 1}) {
		t.Error("HashJSON should be deterministic")
	}
	if HashJSON(1) == HashJSON(2) {
		t.Error("different values should hash differently")
	}
	if HashJSON(func() {}) != HashJSON(nil) {
		t.Error("an unencodable value should hash like null")
	}
}

func TestNewRedisCacheCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewRedisCache(ctx, "127.0.0.1:1"); err == nil {
		t.Error("NewRedisCache should fail with a canceled context")
	}
}

func TestNewMongoCacheBadURI(t *testing.T) {
	if _, err := NewMongoCache(context.Background(), "http://not-mongo", "townsquare"); err == nil {
		t.Error("NewMongoCache should reject a non-mongodb URI")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should report a marked error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("Retryable should keep the wrapped error reachable")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message = %q, want %q", err.Error(), ErrNetwork.Error())
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should not report an unmarked error")
	}
}

func TestBackoffDo(t *testing.T) {
	b := Backoff{Attempts: 3, Delay: time.Millisecond, Max: 2 * time.Millisecond}

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"permanent error", 5, false, 1, true},
		{"recovers", 2, true, 3, false},
		{"gives up", 5, true, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Do(context.Background(), func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.retryable {
					return Retryable(ErrNetwork)
				}
				return ErrNotFound
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffDoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DefaultBackoff.Do(ctx, func() error { return Retryable(ErrNetwork) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}
