package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

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

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if err := c.Set(ctx, "mitre/cti", []byte(`[{"ref":"refs/tags/ATT&CK-v8.0"}]`), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, hit, err := c.Get(ctx, "mitre/cti")
	if err != nil || !hit {
		t.Fatalf("Get() = %v, %v; want hit", hit, err)
	}
	if string(data) != `[{"ref":"refs/tags/ATT&CK-v8.0"}]` {
		t.Errorf("Get() data = %s", data)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("Get() hit for missing key")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	now := time.Now()
	c.now = func() time.Time { return now }
	if err := c.Set(ctx, "key", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); !hit {
		t.Fatal("Get() before expiry should hit")
	}
	now = now.Add(2 * time.Minute)

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get() = %v, %v; want expired miss", hit, err)
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get() = %v, %v; want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	_ = c.Set(ctx, "key", []byte("v"), 0)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}
}

func TestScoped(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	tags := Scoped(c, "tags:")
	other := Scoped(c, "other:")

	if err := tags.Set(ctx, "mitre/cti", []byte("a"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := other.Set(ctx, "mitre/cti", []byte("b"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	data, hit, _ := tags.Get(ctx, "mitre/cti")
	if !hit || string(data) != "a" {
		t.Errorf("tags.Get() = %q, %v", data, hit)
	}
	data, hit, _ = c.Get(ctx, "other:mitre/cti")
	if !hit || string(data) != "b" {
		t.Errorf("parent Get() = %q, %v", data, hit)
	}

	nested := Scoped(tags, "v2:")
	_ = nested.Set(ctx, "k", []byte("n"), 0)
	if _, hit, _ := c.Get(ctx, "tags:v2:k"); !hit {
		t.Error("nested scope should chain prefixes")
	}
}

func TestScopedNil(t *testing.T) {
	c := Scoped(nil, "x:")
	if err := c.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Errorf("Set() error: %v", err)
	}
	if _, hit, _ := c.Get(context.Background(), "k"); hit {
		t.Error("nil inner cache should behave as NullCache")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v; want 3, nil", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestFileCacheClearMissingDir(t *testing.T) {
	c := &FileCache{dir: filepath.Join(t.TempDir(), "gone"), now: time.Now}
	if n, err := c.Clear(); n != 0 || err != nil {
		t.Errorf("Clear() = %d, %v; want 0, nil", n, err)
	}
}

func TestFileCacheForeignEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "tags:mitre/cti", []byte("v"), 0)

	// An entry stored under another key is never returned.
	raw, err := os.ReadFile(c.path("tags:mitre/cti"))
	if err != nil {
		t.Fatal(err)
	}
	other := c.path("other")
	if err := os.MkdirAll(filepath.Dir(other), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(other, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "other"); hit {
		t.Error("entry with a different stored key should be a miss")
	}
}
