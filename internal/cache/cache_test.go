package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/evitrend/internal/model"
)

func TestVerdictKey(t *testing.T) {
	k1 := VerdictKey("gpt-4o-mini", "CDK12", "Activation", "BRCA1", "CDK12 activates BRCA1.")
	k2 := VerdictKey("gpt-4o-mini", "CDK12", "Activation", "BRCA1", "CDK12 activates BRCA1.")
	if k1 != k2 {
		t.Error("Expected identical keys for identical queries")
	}
	if !strings.HasPrefix(k1, "evitrend:v1:") {
		t.Errorf("Expected versioned prefix, got %s", k1)
	}

	others := []string{
		VerdictKey("gpt-4o", "CDK12", "Activation", "BRCA1", "CDK12 activates BRCA1."),
		VerdictKey("gpt-4o-mini", "CDK12", "Inhibition", "BRCA1", "CDK12 activates BRCA1."),
		VerdictKey("gpt-4o-mini", "CDK12", "Activation", "BRCA2", "CDK12 activates BRCA1."),
		// Field boundaries matter
		VerdictKey("gpt-4o-mini", "CDK1", "2Activation", "BRCA1", "CDK12 activates BRCA1."),
	}
	for _, k := range others {
		if k == k1 {
			t.Errorf("Expected distinct key, got collision %s", k)
		}
	}
}

func TestVerdictEncoding(t *testing.T) {
	for _, supported := range []bool{true, false} {
		got, ok := DecodeVerdict(EncodeVerdict(supported))
		if !ok || got != supported {
			t.Errorf("Expected %v, got %v (ok=%v)", supported, got, ok)
		}
	}
	if _, ok := DecodeVerdict([]byte("maybe")); ok {
		t.Error("Expected garbage to be rejected")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss on empty cache")
	}

	_ = c.Set("k", []byte("1"), 0)
	if v, found := c.Get("k"); !found || string(v) != "1" {
		t.Errorf("Expected hit with value 1, got %q (found=%v)", v, found)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after delete")
	}

	_ = c.Set("a", []byte("0"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Error("Expected empty cache after clear")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("1"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := VerdictKey("m", "A", "Activation", "B", "text")

	if err := c.Set(key, []byte("1"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Survives a new instance on the same directory
	again := NewDiskCache(dir, time.Hour)
	if v, found := again.Get(key); !found || string(v) != "1" {
		t.Errorf("Expected persisted value, got %q (found=%v)", v, found)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*", "*.json"))
	if len(matches) != 1 {
		t.Errorf("Expected one sharded entry file, got %v", matches)
	}
	if strings.Contains(matches[0], ":") {
		t.Errorf("Expected file name without colons, got %s", matches[0])
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Delete(key); err != nil {
		t.Errorf("Deleting a missing key should not fail, got %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected miss after delete")
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	_ = c.Set("k", []byte("0"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("Expected expired entry file to be removed")
	}
}

func TestDiskCache_Corrupt(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	path := c.path("k")
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	_ = os.WriteFile(path, []byte("{not json"), 0644)

	if _, found := c.Get("k"); found {
		t.Error("Expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("k", []byte("1"), 0)

	c := NewLayeredCache(time.Hour, dir, time.Hour)
	if v, found := c.Get("k"); !found || string(v) != "1" {
		t.Fatalf("Expected disk hit, got %q (found=%v)", v, found)
	}

	// Remove from disk: memory should still serve it
	_ = disk.Delete("k")
	if _, found := c.Get("k"); !found {
		t.Error("Expected promoted entry in memory")
	}

	_ = c.Clear()
	if _, found := c.Get("k"); found {
		t.Error("Expected miss after clear")
	}
}

func TestNew(t *testing.T) {
	if New(model.CacheConfig{Enabled: false}) != nil {
		t.Error("Expected nil cache when disabled")
	}
	if _, ok := New(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("Expected memory cache without a directory")
	}
	if _, ok := New(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("Expected layered cache with a directory")
	}
}
