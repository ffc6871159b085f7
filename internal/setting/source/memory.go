package source

import (
	"sync"
)

// Memory is a session-wide source: values persist for the lifetime of the
// process and vanish with it. It starts without data, so a read before the
// first write reports ErrSourceNotFound, matching on-disk sources that do
// not exist yet.
type Memory struct {
	base
	mu   sync.RWMutex
	data map[string]any
}

// NewMemory creates an in-memory source with the given identifier.
func NewMemory(name string) *Memory {
	m := &Memory{}
	m.base = base{name: name, s: m}
	return m
}

func (m *Memory) readAll() (map[string]any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.data == nil {
		return nil, false, nil
	}
	out := make(map[string]any, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, true, nil
}

func (m *Memory) writeAll(data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	m.data = out
	return nil
}

func (m *Memory) clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}
