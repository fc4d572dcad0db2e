package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Store defines the persistence operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	GetPortfolio(id string) (string, error)
	SavePortfolio(id, data string) error
	DeletePortfolio(id string) error
}

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type cacheEntry struct {
	portfolio *Portfolio
	loadedAt  time.Time
}

// Manager provides cached, structured access to portfolios stored as JSON
// documents. Reads return deep copies; writes invalidate the cache entry.
type Manager struct {
	store Store
	clock Clock
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewManager creates a Manager with a 60-second cache TTL.
func NewManager(store Store) *Manager {
	return NewManagerWithClock(store, realClock{}, 60*time.Second)
}

// NewManagerWithClock creates a Manager with a custom clock (for testing).
func NewManagerWithClock(store Store, clock Clock, ttl time.Duration) *Manager {
	return &Manager{
		store: store,
		clock: clock,
		ttl:   ttl,
		cache: make(map[string]cacheEntry),
	}
}

// Get loads a portfolio by id, serving from cache when fresh.
func (m *Manager) Get(id string) (*Portfolio, error) {
	m.mu.RLock()
	if e, ok := m.cache[id]; ok && m.clock.Now().Before(e.loadedAt.Add(m.ttl)) {
		p := e.portfolio.Clone()
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock.
	if e, ok := m.cache[id]; ok && m.clock.Now().Before(e.loadedAt.Add(m.ttl)) {
		return e.portfolio.Clone(), nil
	}

	raw, err := m.store.GetPortfolio(id)
	if err != nil {
		return nil, fmt.Errorf("loading portfolio %q: %w", id, err)
	}

	var p Portfolio
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decoding portfolio %q: %w", id, err)
	}

	m.cache[id] = cacheEntry{portfolio: &p, loadedAt: m.clock.Now()}
	return p.Clone(), nil
}

// Save persists a portfolio and invalidates its cache entry.
func (m *Manager) Save(id string, p *Portfolio) error {
	if p == nil {
		return errors.New("nil portfolio")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding portfolio %q: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.SavePortfolio(id, string(data)); err != nil {
		return fmt.Errorf("saving portfolio %q: %w", id, err)
	}
	delete(m.cache, id)
	return nil
}

// Delete removes a portfolio and drops its cache entry, so a read after a
// delete cannot serve the stale snapshot for the rest of the TTL.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.DeletePortfolio(id); err != nil {
		return fmt.Errorf("deleting portfolio %q: %w", id, err)
	}
	delete(m.cache, id)
	return nil
}

// SetAnswer upserts a single verified chat answer on a stored portfolio.
// An empty value removes the entry.
func (m *Manager) SetAnswer(id, key, value string) error {
	p, err := m.Get(id)
	if err != nil {
		return err
	}
	if p.ChatAnswers == nil {
		p.ChatAnswers = make(map[string]string)
	}
	if value == "" {
		delete(p.ChatAnswers, key)
	} else {
		p.ChatAnswers[key] = value
	}
	return m.Save(id, p)
}
