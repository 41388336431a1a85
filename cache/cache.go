package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/baonq-me/screenberry/models"
)

// sweepInterval is how often the janitor scans for expired entries.
const sweepInterval = 5 * time.Minute

type entry struct {
	response  *models.ScanResponse
	expiresAt time.Time
}

// Cache is an in-memory TTL cache for scan responses, keyed by the request
// parameters that shape the result document. Safe for concurrent use.
//
// Expired entries are dropped lazily on Get and swept periodically by a
// janitor goroutine, so a domain nobody asks about again still gets evicted.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	ttl        time.Duration
}

// New creates a Cache holding at most maxEntries responses, each servable
// for ttl after being stored.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
	go c.janitor()
	return c
}

// Key derives the cache key for one scan: domain and scheme are the only
// request parameters that change the result document.
func Key(domain, uriScheme string) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte("|"))
	h.Write([]byte(uriScheme))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached response for key, or false when absent or expired.
func (c *Cache) Get(key string) (*models.ScanResponse, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: Set may have refreshed it.
		if cur, still := c.entries[key]; still && time.Now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.response, true
}

// Set stores resp under key. At capacity one arbitrary entry is evicted
// first; Go's random map iteration order makes that a cheap approximation
// of random replacement.
func (c *Cache) Set(key string, resp *models.ScanResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		for victim := range c.entries {
			delete(c.entries, victim)
			break
		}
	}

	c.entries[key] = entry{
		response:  resp,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for now := range ticker.C {
		var evicted int
		c.mu.Lock()
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
				evicted++
			}
		}
		remaining := len(c.entries)
		c.mu.Unlock()
		if evicted > 0 {
			slog.Debug("cache sweep", "evicted", evicted, "remaining", remaining)
		}
	}
}
