package taxes

import (
	"context"
	"sort"
	"sync"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type MemoryStore struct {
	mu    sync.RWMutex
	taxes map[string]*Tax
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{taxes: make(map[string]*Tax)}
}

func (m *MemoryStore) GetTax(_ context.Context, id string) (*Tax, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.taxes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) ListTaxes(_ context.Context) ([]Tax, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Tax, 0, len(m.taxes))
	for _, t := range m.taxes {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) InsertTax(_ context.Context, t *Tax) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *t
	m.taxes[t.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateTax(_ context.Context, t *Tax) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.taxes[t.ID]; !ok {
		return ErrNotFound
	}
	cp := *t
	m.taxes[t.ID] = &cp
	return nil
}

// SetDefaultTax clears every default flag and sets one, under a single
// lock acquisition.
func (m *MemoryStore) SetDefaultTax(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.taxes[id]
	if !ok {
		return ErrNotFound
	}
	for _, t := range m.taxes {
		t.IsDefault = false
	}
	target.IsDefault = true
	return nil
}
