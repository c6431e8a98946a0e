package storage

import (
	"context"
	"sort"
	"sync"
)

type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, ns, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[ns][key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(_ context.Context, ns, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.data[ns]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[ns] = bucket
	}
	bucket[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) List(_ context.Context, ns string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data[ns]))
	for k := range m.data[ns] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryKV) Delete(_ context.Context, ns, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[ns][key]; !ok {
		return ErrNotFound
	}
	delete(m.data[ns], key)
	if len(m.data[ns]) == 0 {
		delete(m.data, ns)
	}
	return nil
}

func (m *MemoryKV) Namespaces(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for ns := range m.data {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemoryKV) Close() error { return nil }
