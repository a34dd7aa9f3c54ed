package store

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory keeps drawings in process. It backs the server when no database is
// configured, and the tests.
type Memory struct {
	mu       sync.RWMutex
	drawings map[string]Drawing
	now      func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		drawings: make(map[string]Drawing),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Create(_ context.Context, d *Drawing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drawings[d.ID]; ok {
		return ErrExists
	}
	now := m.now()
	d.CreatedAt, d.UpdatedAt = now, now
	m.drawings[d.ID] = clone(*d)
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*Drawing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drawings[id]
	if !ok {
		return nil, ErrNotFound
	}
	d = clone(d)
	return &d, nil
}

func (m *Memory) List(_ context.Context, ownerID string) ([]Drawing, error) {
	m.mu.RLock()
	out := make([]Drawing, 0)
	for _, d := range m.drawings {
		if d.OwnerID == ownerID {
			out = append(out, clone(d))
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Drawing) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (m *Memory) Update(_ context.Context, d *Drawing, prevVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.drawings[d.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != prevVersion {
		return ErrConflict
	}

	d.OwnerID = cur.OwnerID
	d.CreatedAt = cur.CreatedAt
	d.UpdatedAt = m.now()
	m.drawings[d.ID] = clone(*d)
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drawings[id]; !ok {
		return ErrNotFound
	}
	delete(m.drawings, id)
	return nil
}

func clone(d Drawing) Drawing {
	d.Document = bytes.Clone(d.Document)
	return d
}
