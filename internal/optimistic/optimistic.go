// Package optimistic applies speculative view-state changes that roll back
// when the server call behind them fails.
package optimistic

import "sync"

// Map is a concurrency-safe view state keyed by record id.
type Map[K comparable, V comparable] struct {
	mu     sync.Mutex
	values map[K]V
}

func NewMap[K comparable, V comparable]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Replace swaps the whole state, as after a re-fetch.
func (m *Map[K, V]) Replace(values map[K]V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[K]V, len(values))
	for k, v := range values {
		m.values[k] = v
	}
}

// Apply sets key to next right away, then runs commit. If commit fails the
// prior value is restored, unless something else has overwritten the key in
// the meantime. Keys absent before Apply are removed again on rollback.
func (m *Map[K, V]) Apply(key K, next V, commit func() error) error {
	m.mu.Lock()
	prior, existed := m.values[key]
	m.values[key] = next
	m.mu.Unlock()

	err := commit()
	if err == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.values[key]; ok && current == next {
		if existed {
			m.values[key] = prior
		} else {
			delete(m.values, key)
		}
	}
	return err
}
