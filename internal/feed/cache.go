package feed

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cache is a file-based cache for raw feed responses, one file per key.
type Cache struct {
	cacheDir string
	ttl      time.Duration
	mu       sync.RWMutex
	now      func() time.Time
}

type cacheEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCache(cacheDir string, ttl time.Duration) (*Cache, error) {
	if cacheDir == "" {
		cacheDir = "cache/feed"
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create feed cache dir: %w", err)
	}
	return &Cache{cacheDir: cacheDir, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached payload when present and younger than the TTL.
// Expired entries are removed on read.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Key != key {
		return nil, false
	}
	if c.now().Sub(entry.Timestamp) > c.ttl {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Data, true
}

func (c *Cache) Set(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := json.Marshal(cacheEntry{Key: key, Data: data, Timestamp: c.now()})
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(key), b, 0o644)
}

// CleanupExpired removes entries older than the TTL.
func (c *Cache) CleanupExpired() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if c.now().Sub(info.ModTime()) > c.ttl {
			_ = os.Remove(filepath.Join(c.cacheDir, e.Name()))
		}
	}
	return nil
}

// GetOrFetch serves from cache or calls fetchFn and stores its result.
// Write failures are ignored; the fetched payload is still returned.
func (c *Cache) GetOrFetch(key string, fetchFn func() ([]byte, error)) ([]byte, error) {
	if data, ok := c.Get(key); ok {
		return data, nil
	}
	data, err := fetchFn()
	if err != nil {
		return nil, err
	}
	_ = c.Set(key, data)
	return data, nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%x.json", md5.Sum([]byte(key))))
}

func MakeKey(parts ...string) string {
	return strings.Join(parts, "|")
}
