// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package revocation

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// CRLCacheEntry represents a cached CRL with metadata
type CRLCacheEntry struct {
	CRL        *x509.RevocationList
	FetchedAt  time.Time // When this CRL was fetched or added
	NextUpdate time.Time // When this CRL expires (from CRL.NextUpdate)
	Key        string    // Distribution point URL, or an issuer key for added CRLs
}

// isFresh checks if the cached CRL is still usable at now.
func (entry *CRLCacheEntry) isFresh(now time.Time) bool {
	if entry.NextUpdate.IsZero() {
		return entry.FetchedAt.After(now.Add(-24 * time.Hour))
	}
	return entry.NextUpdate.After(now)
}

// isExpired checks if the CRL has expired and should be cleaned up
func (entry *CRLCacheEntry) isExpired(now time.Time) bool {
	if entry.NextUpdate.IsZero() {
		return entry.FetchedAt.Before(now.Add(-24 * time.Hour))
	}
	return entry.NextUpdate.Before(now.Add(-1 * time.Hour)) // Allow 1 hour grace period
}

// CRLCacheConfig holds configuration for the CRL cache
type CRLCacheConfig struct {
	MaxSize         int           // Maximum number of CRLs to cache (0 = unlimited, but not recommended)
	CleanupInterval time.Duration // How often to run cleanup (default: 1 hour)
}

// CRLCacheMetrics tracks cache performance and usage
type CRLCacheMetrics struct {
	Size        int64 // Current number of cached CRLs
	Hits        int64 // Number of cache hits
	Misses      int64 // Number of cache misses
	Evictions   int64 // Number of LRU evictions
	Cleanups    int64 // Number of expired CRL cleanups
	TotalMemory int64 // Approximate memory usage in bytes
}

// DefaultCRLCacheConfig is used by [NewCRLCache] for zero fields.
var DefaultCRLCacheConfig = CRLCacheConfig{
	MaxSize:         100,
	CleanupInterval: 1 * time.Hour,
}

// CRLCache is an LRU cache of parsed CRLs.
//
// CRLCache is safe for concurrent use.
type CRLCache struct {
	mu      sync.Mutex
	entries map[string]*CRLCacheEntry
	order   []string // Maintains access order for LRU eviction
	config  CRLCacheConfig
	now     func() time.Time

	hits, misses, evictions, cleanups atomic.Int64
	cleanupRunning                    atomic.Bool
}

// Default is the process wide cache shared by checkers that are not given one.
var Default = NewCRLCache(DefaultCRLCacheConfig)

// NewCRLCache creates an empty cache.
func NewCRLCache(config CRLCacheConfig) *CRLCache {
	c := &CRLCache{
		entries: make(map[string]*CRLCacheEntry),
		now:     time.Now,
	}
	c.SetConfig(config)
	return c
}

// SetConfig replaces the configuration, evicting entries beyond the new size.
func (c *CRLCache) SetConfig(config CRLCacheConfig) {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCRLCacheConfig.CleanupInterval
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = config
	c.evictLocked(config.MaxSize)
}

// Config returns a copy of the current configuration.
func (c *CRLCache) Config() CRLCacheConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// evictLocked drops least recently used entries until at most limit remain.
func (c *CRLCache) evictLocked(limit int) {
	if limit <= 0 {
		return
	}
	for len(c.entries) > limit && len(c.order) > 0 {
		lru := c.order[0]
		delete(c.entries, lru)
		c.order = c.order[1:]
		c.evictions.Add(1)
	}
}

func (c *CRLCache) touchLocked(key string) {
	c.removeOrderLocked(key)
	c.order = append(c.order, key)
}

func (c *CRLCache) removeOrderLocked(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Get returns the fresh CRL cached under url.
func (c *CRLCache) Get(url string) (*x509.RevocationList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok || !entry.isFresh(c.now()) {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.touchLocked(url)
	return entry.CRL, true
}

// Set stores crl under url, evicting the least recently used entry when full.
func (c *CRLCache) Set(url string, crl *x509.RevocationList) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[url]; !exists && c.config.MaxSize > 0 {
		c.evictLocked(c.config.MaxSize - 1)
	}
	c.entries[url] = &CRLCacheEntry{
		CRL:        crl,
		FetchedAt:  c.now(),
		NextUpdate: crl.NextUpdate,
		Key:        url,
	}
	c.touchLocked(url)
}

// AddCRL stores an operator supplied CRL. Such CRLs are found by issuer
// through [CRLCache.ForIssuer] and serve offline revocation checks.
func (c *CRLCache) AddCRL(crl *x509.RevocationList) {
	c.Set(fmt.Sprintf("issuer:%x:%s", crl.RawIssuer, crl.Number), crl)
}

// ForIssuer returns the fresh cached CRLs whose issuer name matches issuer.
func (c *CRLCache) ForIssuer(issuer *x509.Certificate) []*x509.RevocationList {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var out []*x509.RevocationList
	for i := len(c.order) - 1; i >= 0; i-- {
		entry := c.entries[c.order[i]]
		if entry.isFresh(now) && bytes.Equal(entry.CRL.RawIssuer, issuer.RawSubject) {
			out = append(out, entry.CRL)
		}
	}
	if len(out) == 0 {
		c.misses.Add(1)
	} else {
		c.hits.Add(1)
	}
	return out
}

// CleanupExpired removes CRLs that have expired beyond their NextUpdate time
// and returns how many were removed.
func (c *CRLCache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			delete(c.entries, key)
			c.removeOrderLocked(key)
			removed++
		}
	}
	c.cleanups.Add(int64(removed))
	return removed
}

// StartCleanup runs CleanupExpired periodically until ctx is done. Only one
// cleanup goroutine runs per cache; later calls return immediately.
func (c *CRLCache) StartCleanup(ctx context.Context) {
	if !c.cleanupRunning.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer c.cleanupRunning.Store(false)

		ticker := time.NewTicker(c.Config().CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.CleanupExpired()
				// Update ticker interval in case config changed
				ticker.Reset(c.Config().CleanupInterval)
			}
		}
	}()
}

// Metrics returns current cache metrics.
func (c *CRLCache) Metrics() CRLCacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalMemory int64
	for _, entry := range c.entries {
		totalMemory += int64(len(entry.CRL.Raw)) + int64(len(entry.Key)) + 24 // Approximate overhead
	}

	return CRLCacheMetrics{
		Size:        int64(len(c.entries)),
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Cleanups:    c.cleanups.Load(),
		TotalMemory: totalMemory,
	}
}

// Clear drops all entries and resets the metrics.
func (c *CRLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CRLCacheEntry)
	c.order = nil
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.cleanups.Store(0)
}

// Stats returns a formatted string with cache statistics
func (c *CRLCache) Stats() string {
	metrics := c.Metrics()
	config := c.Config()

	hitRate := float64(0)
	totalRequests := metrics.Hits + metrics.Misses
	if totalRequests > 0 {
		hitRate = float64(metrics.Hits) / float64(totalRequests) * 100
	}

	return fmt.Sprintf("CRL Cache Statistics:\n"+
		"  Size: %d/%d entries\n"+
		"  Memory Usage: %.2f KB\n"+
		"  Hit Rate: %.1f%% (%d hits, %d misses)\n"+
		"  Evictions: %d\n"+
		"  Cleanups: %d\n"+
		"  Cleanup Interval: %v",
		metrics.Size, config.MaxSize,
		float64(metrics.TotalMemory)/1024,
		hitRate, metrics.Hits, metrics.Misses,
		metrics.Evictions,
		metrics.Cleanups,
		config.CleanupInterval)
}
