package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/evitrend/internal/model"
)

const keyPrefix = "evitrend:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// VerdictKey identifies one correctness judgement: the model asked and the
// exact (subject, relationship, object, sentence) it was asked about.
func VerdictKey(modelName, subject, relationship, object, evidenceText string) string {
	h := sha256.New()
	for _, part := range []string{modelName, subject, relationship, object, evidenceText} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// EncodeVerdict stores a verdict as "1" or "0"
func EncodeVerdict(supported bool) []byte {
	if supported {
		return []byte("1")
	}
	return []byte("0")
}

// DecodeVerdict reads a stored verdict. ok is false for anything other than "1" or "0".
func DecodeVerdict(b []byte) (supported bool, ok bool) {
	switch strings.TrimSpace(string(b)) {
	case "1":
		return true, true
	case "0":
		return false, true
	default:
		return false, false
	}
}

// New builds the configured cache, or nil when caching is disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
