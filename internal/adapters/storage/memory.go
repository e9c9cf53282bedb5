package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Option configures a Memory store.
type Option func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// Memory is a Store held in process memory.
type Memory struct {
	mu     sync.RWMutex
	byID   map[string]Model
	byName map[string]string // owner + "\x00" + NameKey -> id
	bySlug map[string]string
	now    func() time.Time
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		byID:   make(map[string]Model),
		byName: make(map[string]string),
		bySlug: make(map[string]string),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func nameIndex(ownerID, name string) string {
	return ownerID + "\x00" + NameKey(name)
}

// Save implements Store.Save.
func (m *Memory) Save(ctx context.Context, req SaveRequest) (Model, bool, error) {
	if err := req.Validate(); err != nil {
		return Model{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := nameIndex(req.OwnerID, req.Name)
	existing, updated := m.byID[m.byName[key]]
	model := Apply(existing, req, m.now().UTC())
	m.byID[model.ID] = model
	m.byName[key] = model.ID
	return model, updated, nil
}

// Get implements Store.Get.
func (m *Memory) Get(ctx context.Context, id string) (Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	model, ok := m.byID[id]
	if !ok {
		return Model{}, ErrNotFound
	}
	return model, nil
}

// List implements Store.List.
func (m *Memory) List(ctx context.Context, ownerID string) ([]Model, error) {
	m.mu.RLock()
	out := make([]Model, 0)
	for _, model := range m.byID {
		if model.OwnerID == ownerID {
			out = append(out, model)
		}
	}
	m.mu.RUnlock()
	SortNewestFirst(out)
	return out, nil
}

// SetPublic implements Store.SetPublic.
func (m *Memory) SetPublic(ctx context.Context, ownerID, id string, public bool) (Model, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	model, ok := m.byID[id]
	if !ok || model.OwnerID != ownerID {
		return Model{}, ErrNotFound
	}
	if public && model.Slug == "" {
		slug, err := NewSlug()
		if err != nil {
			return Model{}, fmt.Errorf("generate slug: %w", err)
		}
		model.Slug = slug
		m.bySlug[slug] = id
	}
	model.Public = public
	model.UpdatedAt = m.now().UTC()
	m.byID[id] = model
	return model, nil
}

// Delete implements Store.Delete.
func (m *Memory) Delete(ctx context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	model, ok := m.byID[id]
	if !ok || model.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.byID, id)
	delete(m.byName, nameIndex(ownerID, model.Name))
	if model.Slug != "" {
		delete(m.bySlug, model.Slug)
	}
	return nil
}

// GetBySlug implements Store.GetBySlug.
func (m *Memory) GetBySlug(ctx context.Context, slug string) (Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	model, ok := m.byID[m.bySlug[slug]]
	if !ok || !model.Public {
		return Model{}, ErrNotFound
	}
	return model, nil
}

// ListPublic implements Store.ListPublic.
func (m *Memory) ListPublic(ctx context.Context) ([]Model, error) {
	m.mu.RLock()
	out := make([]Model, 0)
	for _, model := range m.byID {
		if model.Public {
			out = append(out, model)
		}
	}
	m.mu.RUnlock()
	SortNewestFirst(out)
	return out, nil
}

// Close implements Store.Close.
func (m *Memory) Close() error { return nil }
