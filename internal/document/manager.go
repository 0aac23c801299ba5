package document

import (
	"maps"
	"path/filepath"
	"slices"
	"sync"
)

// Manager is the set of documents a session has open, keyed by absolute path.
type Manager struct {
	mu   sync.RWMutex
	open map[string]*Document
}

// NewManager returns an empty set.
func NewManager() *Manager {
	return &Manager{open: make(map[string]*Document)}
}

func key(path string) (string, error) {
	return filepath.Abs(path)
}

// Open loads path unless it is already open. loaded is true on first load.
func (m *Manager) Open(path string) (doc *Document, loaded bool, err error) {
	k, err := key(path)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if doc, ok := m.open[k]; ok {
		return doc, false, nil
	}
	if doc, err = Open(k); err != nil {
		return nil, false, err
	}
	m.open[k] = doc
	return doc, true, nil
}

// Get looks up an open document.
func (m *Manager) Get(path string) (*Document, bool) {
	k, err := key(path)
	if err != nil {
		return nil, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.open[k]
	return doc, ok
}

// Close forgets path. Closing an unknown path does nothing.
func (m *Manager) Close(path string) {
	if k, err := key(path); err == nil {
		m.mu.Lock()
		delete(m.open, k)
		m.mu.Unlock()
	}
}

// Paths lists open documents in sorted order.
func (m *Manager) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.open))
}

// Count is the number of open documents.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.open)
}
