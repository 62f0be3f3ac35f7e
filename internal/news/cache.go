package news

import (
	"sort"
	"sync"
	"time"
)

// analysisCache holds analysed batches per query for a fixed ttl
type analysisCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	stop chan struct{}
	once sync.Once
}

type cacheEntry struct {
	analyses  []Analysis
	timestamp time.Time
}

// newAnalysisCache starts a background sweep every cleanupEvery; call close
// to stop it. A non-positive cleanupEvery disables the sweep.
func newAnalysisCache(ttl, cleanupEvery time.Duration) *analysisCache {
	cache := &analysisCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		stop: make(chan struct{}),
	}
	if cleanupEvery > 0 {
		go cache.cleanupLoop(cleanupEvery)
	}
	return cache
}

func (c *analysisCache) get(query string) ([]Analysis, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[query]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return nil, time.Time{}, false
	}
	return entry.analyses, entry.timestamp, true
}

func (c *analysisCache) set(query string, analyses []Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[query] = &cacheEntry{
		analyses:  analyses,
		timestamp: time.Now(),
	}
}

func (c *analysisCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*cacheEntry)
}

// keys returns the cached queries, sorted
func (c *analysisCache) keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *analysisCache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes expired entries
func (c *analysisCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for query, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, query)
		}
	}
}

func (c *analysisCache) close() {
	c.once.Do(func() { close(c.stop) })
}

// cloneAnalyses copies analyses and their entity slices so cached batches
// never share memory with callers
func cloneAnalyses(analyses []Analysis) []Analysis {
	out := make([]Analysis, len(analyses))
	for i, a := range analyses {
		a.Entities = append([]string(nil), a.Entities...)
		out[i] = a
	}
	return out
}
