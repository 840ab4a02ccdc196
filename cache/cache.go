package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache stores rendered projection results keyed by Key.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Memory is a process-local Cache for single runs and tests.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

// Get reports the cached value for key, if any.
func (c *Memory) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

// Set stores value under key, replacing any previous entry.
func (c *Memory) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

// Key derives a stable cache key from its parts. Each part is framed
// before hashing so ("ab","c") and ("a","bc") produce distinct keys.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "loancast:" + hex.EncodeToString(h.Sum(nil))
}
