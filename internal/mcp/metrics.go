package mcp

import (
	"sync"
	"time"
)

// GenerationMetrics tracks tool call statistics for the MCP server.
// All methods are thread-safe and can be called concurrently.
type GenerationMetrics struct {
	lastDuration time.Duration
	lastError    string
	total        int64
	cacheHits    int64
	failures     int64
	degraded     int64
	byMode       map[string]int64
	mu           sync.RWMutex
}

// MetricsSnapshot is an immutable snapshot of generation metrics.
type MetricsSnapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	CacheHits      int64            `json:"cache_hits"`
	Failures       int64            `json:"failures"`
	Degraded       int64            `json:"degraded"`
	ByMode         map[string]int64 `json:"by_mode"`
	LastDurationMs int64            `json:"last_duration_ms"`
	LastError      string           `json:"last_error,omitempty"`
}

// NewGenerationMetrics creates a new GenerationMetrics instance with zero values.
func NewGenerationMetrics() *GenerationMetrics {
	return &GenerationMetrics{byMode: make(map[string]int64)}
}

// RecordGenerate records the outcome of one generate call. mode is empty
// when err is set.
func (m *GenerationMetrics) RecordGenerate(duration time.Duration, mode string, degraded, cached bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	m.lastDuration = duration

	if err != nil {
		m.failures++
		m.lastError = err.Error()
		return
	}

	m.lastError = ""
	m.byMode[mode]++
	if cached {
		m.cacheHits++
	}
	if degraded {
		m.degraded++
	}
}

// GetMetrics returns a snapshot that is independent of later records.
func (m *GenerationMetrics) GetMetrics() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byMode := make(map[string]int64, len(m.byMode))
	for mode, n := range m.byMode {
		byMode[mode] = n
	}

	return MetricsSnapshot{
		TotalRequests:  m.total,
		CacheHits:      m.cacheHits,
		Failures:       m.failures,
		Degraded:       m.degraded,
		ByMode:         byMode,
		LastDurationMs: m.lastDuration.Milliseconds(),
		LastError:      m.lastError,
	}
}
