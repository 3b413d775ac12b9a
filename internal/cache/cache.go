package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/ppiankov/laytoneval/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Namespaces keep page bodies and model responses apart
const (
	NamespacePage = "page"
	NamespaceLLM  = "llm"
)

// Key derives a file-safe cache key from a namespace and the parts that
// identify an entry (a URL, or task + model + input)
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "laytoneval-v1-" + namespace + "-" + hex.EncodeToString(hash[:])
}

// DefaultDir is where the disk layer lives when no directory is configured
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, "laytoneval")
}

// FromConfig builds the memory + disk cache described by cfg.
// It returns nil when caching is disabled.
func FromConfig(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}

	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir()
	}

	return NewLayeredCache(NewMemoryCache(cfg.TTL), NewDiskCache(dir, cfg.TTL))
}
