package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/JericoFX/advance-manager/pkg/cache"
)

// Recorder receives domain events worth counting. Services depend on this
// interface so they can run without a metrics stack.
type Recorder interface {
	RecordConsistencyFailure(operation string)
	RecordRateLimited(action string)
	RecordDenied(action string)
}

// Nop is a Recorder that discards everything
type Nop struct{}

func (Nop) RecordConsistencyFailure(string) {}
func (Nop) RecordRateLimited(string)        {}
func (Nop) RecordDenied(string)             {}

// CacheSource is anything exposing cache statistics
type CacheSource interface {
	Metrics() *cache.Metrics
}

// Collector collects and aggregates metrics for the application.
type Collector struct {
	// API metrics
	apiRequests sync.Map // map[string]*uint64 - method -> count
	apiErrors   sync.Map // map[string]*uint64 - method -> error count
	apiDuration sync.Map // map[string]*durationValue - method -> total duration in seconds
	apiOutcome  sync.Map // map[outcomeKey]*uint64 - method and result code -> count

	// Domain metrics
	consistencyFailures sync.Map // operation -> count
	rateLimited         sync.Map // action -> count
	denied              sync.Map // action -> count

	cachesMu sync.RWMutex
	caches   map[string]CacheSource

	exporter *PrometheusExporter
}

type outcomeKey struct {
	method string
	code   string
}

// durationValue holds duration with mutex for thread-safe updates.
type durationValue struct {
	mu           sync.Mutex
	totalSeconds float64
}

// CacheMetrics holds cache performance metrics.
type CacheMetrics struct {
	Hits      uint64
	Misses    uint64
	HitRate   float64
	Evictions uint64
}

// APIMetrics holds API request metrics.
type APIMetrics struct {
	RequestCounts        map[string]uint64
	ErrorCounts          map[string]uint64
	TotalDurationSeconds map[string]float64
	OutcomeCounts        map[string]map[string]uint64 // method -> result code -> count
}

// DomainMetrics holds counts of domain events.
type DomainMetrics struct {
	ConsistencyFailures map[string]uint64
	RateLimited         map[string]uint64
	Denied              map[string]uint64
}

var _ Recorder = (*Collector)(nil)

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{caches: make(map[string]CacheSource)}
}

// SetExporter forwards domain events to Prometheus as well.
func (c *Collector) SetExporter(exporter *PrometheusExporter) {
	c.exporter = exporter
}

// RegisterCache adds a named cache whose statistics are reported.
func (c *Collector) RegisterCache(name string, source CacheSource) {
	c.cachesMu.Lock()
	c.caches[name] = source
	c.cachesMu.Unlock()
}

// RecordRequest records an API request.
func (c *Collector) RecordRequest(method string) {
	atomic.AddUint64(c.getOrCreateCounter(&c.apiRequests, method), 1)
}

// RecordError records an API error.
func (c *Collector) RecordError(method string) {
	atomic.AddUint64(c.getOrCreateCounter(&c.apiErrors, method), 1)
}

// RecordOutcome records the result code of an API call.
func (c *Collector) RecordOutcome(method, code string) {
	val, _ := c.apiOutcome.LoadOrStore(outcomeKey{method: method, code: code}, new(uint64))
	atomic.AddUint64(val.(*uint64), 1)
}

// RecordDuration records the duration of an API call in seconds.
func (c *Collector) RecordDuration(method string, durationSeconds float64) {
	val, _ := c.apiDuration.LoadOrStore(method, &durationValue{})
	dv := val.(*durationValue)

	dv.mu.Lock()
	dv.totalSeconds += durationSeconds
	dv.mu.Unlock()
}

// RecordConsistencyFailure records a failed compensating action.
func (c *Collector) RecordConsistencyFailure(operation string) {
	atomic.AddUint64(c.getOrCreateCounter(&c.consistencyFailures, operation), 1)
	if c.exporter != nil {
		c.exporter.consistencyFailures.WithLabelValues(operation).Inc()
	}
}

// RecordRateLimited records a cooldown denial.
func (c *Collector) RecordRateLimited(action string) {
	atomic.AddUint64(c.getOrCreateCounter(&c.rateLimited, action), 1)
	if c.exporter != nil {
		c.exporter.rateLimited.WithLabelValues(action).Inc()
	}
}

// RecordDenied records an authorization denial.
func (c *Collector) RecordDenied(action string) {
	atomic.AddUint64(c.getOrCreateCounter(&c.denied, action), 1)
	if c.exporter != nil {
		c.exporter.denied.WithLabelValues(action).Inc()
	}
}

// GetCacheMetrics returns current metrics per registered cache.
func (c *Collector) GetCacheMetrics() map[string]*CacheMetrics {
	c.cachesMu.RLock()
	defer c.cachesMu.RUnlock()

	result := make(map[string]*CacheMetrics, len(c.caches))
	for name, source := range c.caches {
		m := source.Metrics()
		if m == nil {
			result[name] = &CacheMetrics{}
			continue
		}
		result[name] = &CacheMetrics{
			Hits:      m.Hits,
			Misses:    m.Misses,
			HitRate:   m.HitRate(),
			Evictions: m.KeysEvicted,
		}
	}
	return result
}

// GetAPIMetrics returns current API metrics.
func (c *Collector) GetAPIMetrics() *APIMetrics {
	result := &APIMetrics{
		RequestCounts:        loadCounters(&c.apiRequests),
		ErrorCounts:          loadCounters(&c.apiErrors),
		TotalDurationSeconds: make(map[string]float64),
		OutcomeCounts:        make(map[string]map[string]uint64),
	}

	c.apiOutcome.Range(func(key, value interface{}) bool {
		k := key.(outcomeKey)
		if result.OutcomeCounts[k.method] == nil {
			result.OutcomeCounts[k.method] = make(map[string]uint64)
		}
		result.OutcomeCounts[k.method][k.code] = atomic.LoadUint64(value.(*uint64))
		return true
	})

	c.apiDuration.Range(func(key, value interface{}) bool {
		dv := value.(*durationValue)
		dv.mu.Lock()
		result.TotalDurationSeconds[key.(string)] = dv.totalSeconds
		dv.mu.Unlock()
		return true
	})

	return result
}

// GetDomainMetrics returns current domain event counts.
func (c *Collector) GetDomainMetrics() *DomainMetrics {
	return &DomainMetrics{
		ConsistencyFailures: loadCounters(&c.consistencyFailures),
		RateLimited:         loadCounters(&c.rateLimited),
		Denied:              loadCounters(&c.denied),
	}
}

// getOrCreateCounter gets or creates a counter for the given key.
func (c *Collector) getOrCreateCounter(m *sync.Map, key string) *uint64 {
	val, _ := m.LoadOrStore(key, new(uint64))
	return val.(*uint64)
}

func loadCounters(m *sync.Map) map[string]uint64 {
	out := make(map[string]uint64)
	m.Range(func(key, value interface{}) bool {
		out[key.(string)] = atomic.LoadUint64(value.(*uint64))
		return true
	})
	return out
}
