package logging

import "sync"

// Metrics is a process-wide counter/gauge table keyed by string. It backs
// the diagnostics endpoint; keys are owned by the packages that emit them.
type Metrics struct {
	mu     sync.RWMutex
	values map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{values: make(map[string]uint64)}
}

// TelemetryAdd increments the counter stored under key.
func (m *Metrics) TelemetryAdd(key string, delta uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	m.values[key] += delta
	m.mu.Unlock()
}

// TelemetryStore overwrites the gauge stored under key.
func (m *Metrics) TelemetryStore(key string, value uint64) {
	if m == nil || key == "" {
		return
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

// TelemetrySnapshot copies the current values for reporting.
func (m *Metrics) TelemetrySnapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	copied := make(map[string]uint64, len(m.values))
	for k, v := range m.values {
		copied[k] = v
	}
	return copied
}
