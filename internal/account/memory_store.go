package account

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory profile store for demo/development.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile // by ID
}

// NewMemoryStore creates a new in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*Profile),
	}
}

func (m *MemoryStore) Create(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.profiles[p.ID]; exists {
		return ErrProfileExists
	}

	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) Update(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[p.ID]; !ok {
		return ErrProfileNotFound
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

var _ Store = (*MemoryStore)(nil)
