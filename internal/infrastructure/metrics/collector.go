package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/garrisonhq/garrison/internal/infrastructure/cache"
)

// Collector collects and aggregates metrics for the application.
type Collector struct {
	// HTTP metrics
	httpRequests sync.Map // map[string]*uint64 - route -> count
	httpErrors   sync.Map // map[string]*uint64 - route -> error count
	httpDuration sync.Map // map[string]*durationValue - route -> total duration in seconds

	// Schema cache reference (optional, for querying cache metrics)
	schemaCache *cache.TTLCache
}

// durationValue holds duration with mutex for thread-safe updates.
type durationValue struct {
	mu           sync.Mutex
	totalSeconds float64
}

// CacheMetrics holds schema cache performance metrics.
type CacheMetrics struct {
	Hits        uint64
	Misses      uint64
	HitRate     float64
	KeysCurrent int64
}

// HTTPMetrics holds HTTP request metrics.
type HTTPMetrics struct {
	RequestCounts        map[string]uint64
	ErrorCounts          map[string]uint64
	TotalDurationSeconds map[string]float64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetSchemaCache sets the cache instance for collecting cache metrics.
func (c *Collector) SetSchemaCache(schemaCache *cache.TTLCache) {
	c.schemaCache = schemaCache
}

// RecordRequest records an HTTP request.
func (c *Collector) RecordRequest(route string) {
	counter := c.getOrCreateCounter(&c.httpRequests, route)
	atomic.AddUint64(counter, 1)
}

// RecordError records an HTTP error response.
func (c *Collector) RecordError(route string) {
	counter := c.getOrCreateCounter(&c.httpErrors, route)
	atomic.AddUint64(counter, 1)
}

// RecordDuration records the duration of a request in seconds.
func (c *Collector) RecordDuration(route string, durationSeconds float64) {
	val, _ := c.httpDuration.LoadOrStore(route, &durationValue{})
	dv := val.(*durationValue)

	dv.mu.Lock()
	dv.totalSeconds += durationSeconds
	dv.mu.Unlock()
}

// GetCacheMetrics returns current schema cache metrics.
func (c *Collector) GetCacheMetrics() *CacheMetrics {
	if c.schemaCache == nil {
		return &CacheMetrics{}
	}

	hits, misses := c.schemaCache.Stats()
	result := &CacheMetrics{
		Hits:        hits,
		Misses:      misses,
		KeysCurrent: int64(c.schemaCache.Len()),
	}
	if total := hits + misses; total > 0 {
		result.HitRate = float64(hits) / float64(total)
	}
	return result
}

// GetHTTPMetrics returns current HTTP metrics.
func (c *Collector) GetHTTPMetrics() *HTTPMetrics {
	result := &HTTPMetrics{
		RequestCounts:        make(map[string]uint64),
		ErrorCounts:          make(map[string]uint64),
		TotalDurationSeconds: make(map[string]float64),
	}

	// Collect request counts
	c.httpRequests.Range(func(key, value interface{}) bool {
		route := key.(string)
		count := atomic.LoadUint64(value.(*uint64))
		result.RequestCounts[route] = count
		return true
	})

	// Collect error counts
	c.httpErrors.Range(func(key, value interface{}) bool {
		route := key.(string)
		count := atomic.LoadUint64(value.(*uint64))
		result.ErrorCounts[route] = count
		return true
	})

	// Collect duration totals
	c.httpDuration.Range(func(key, value interface{}) bool {
		route := key.(string)
		dv := value.(*durationValue)
		dv.mu.Lock()
		result.TotalDurationSeconds[route] = dv.totalSeconds
		dv.mu.Unlock()
		return true
	})

	return result
}

// getOrCreateCounter gets or creates a counter for the given key.
func (c *Collector) getOrCreateCounter(m *sync.Map, key string) *uint64 {
	val, _ := m.LoadOrStore(key, new(uint64))
	return val.(*uint64)
}
