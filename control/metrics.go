// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Session counters for the command line client.
// Counters live in a thread-safe map and are registered on first use.

package control

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Counter names used by cmd/wsclient.
const (
	MetricMessagesSent     = "messages_sent"
	MetricBytesSent        = "bytes_sent"
	MetricMessagesReceived = "messages_received"
	MetricBytesReceived    = "bytes_received"
	MetricPingsAnswered    = "pings_answered"
	MetricIdleReceives     = "idle_receives"
)

// MetricsRegistry holds named counters.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	updated  time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]int64),
	}
}

// Add increases counter key by delta, creating it at zero if needed.
func (mr *MetricsRegistry) Add(key string, delta int64) {
	mr.mu.Lock()
	mr.counters[key] += delta
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Get returns the current value of key; unknown counters read as zero.
func (mr *MetricsRegistry) Get(key string) int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.counters[key]
}

// Updated returns the time of the last Add, zero if none.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// GetSnapshot returns a copy of all counters.
func (mr *MetricsRegistry) GetSnapshot() map[string]int64 {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]int64, len(mr.counters))
	for k, v := range mr.counters {
		out[k] = v
	}
	return out
}

// ZapFields renders the counters as log fields, sorted by name.
func (mr *MetricsRegistry) ZapFields() []zap.Field {
	snap := mr.GetSnapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Int64(k, snap[k]))
	}
	return fields
}
