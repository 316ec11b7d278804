package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"durak/internal/domain"
	"durak/internal/ports"
)

type entry struct {
	mu      sync.Mutex
	session *domain.Session
	deleted bool
}

// Memory is an in-process SessionStore. The map lock only guards membership;
// each session has its own mutex, so moves in different rooms never contend.
// Lock order is entry then map.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemory returns an empty store. now may be nil to use time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries: make(map[string]*entry),
		now:     now,
	}
}

func (m *Memory) Create(ctx context.Context, s *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[s.ID]; ok {
		return fmt.Errorf("%w: %s", ports.ErrSessionExists, s.ID)
	}
	cp := s.Clone()
	ts := m.now()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = ts
	}
	cp.UpdatedAt = ts
	m.entries[s.ID] = &entry{session: cp}
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, notFound(id)
	}
	return e.session.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, notFound(id)
	}

	cp := e.session.Clone()
	if err := fn(cp); err != nil {
		return nil, err
	}
	cp.UpdatedAt = m.now()
	e.session = cp
	return cp.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return notFound(id)
	}
	m.remove(id, e)
	return nil
}

func (m *Memory) Reap(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.RLock()
	snapshot := make(map[string]*entry, len(m.entries))
	for id, e := range m.entries {
		snapshot[id] = e
	}
	m.mu.RUnlock()

	var reaped []string
	for id, e := range snapshot {
		if err := ctx.Err(); err != nil {
			return reaped, err
		}
		e.mu.Lock()
		if !e.deleted && e.session.UpdatedAt.Before(cutoff) {
			m.remove(id, e)
			reaped = append(reaped, id)
		}
		e.mu.Unlock()
	}
	return reaped, nil
}

// Len returns the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) lookup(id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}
	return e, nil
}

// remove must be called with e.mu held.
func (m *Memory) remove(id string, e *entry) {
	e.deleted = true
	m.mu.Lock()
	if m.entries[id] == e {
		delete(m.entries, id)
	}
	m.mu.Unlock()
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ports.ErrSessionNotFound, id)
}

var _ ports.SessionStore = (*Memory)(nil)
