package endpoint

import (
	"errors"
	"sort"
	"sync"
)

// Manager is a named endpoint registry with one default. The first
// registered endpoint becomes the default until another claims it.
type Manager struct {
	mu          sync.RWMutex
	endpoints   map[string]Endpoint
	defaultName string
}

func NewManager() *Manager {
	return &Manager{endpoints: make(map[string]Endpoint)}
}

// Register adds or replaces an endpoint. When makeDefault is set, or
// when the registry was empty, the endpoint becomes the default.
func (m *Manager) Register(ep Endpoint, makeDefault bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := ep.Name()
	if len(m.endpoints) == 0 || makeDefault {
		m.defaultName = name
	}
	m.endpoints[name] = ep
}

// Get resolves a name to an endpoint. The empty name resolves to the
// default. A miss returns *NotFoundError.
func (m *Manager) Get(name string) (Endpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if name == "" {
		name = m.defaultName
	}
	if ep, ok := m.endpoints[name]; ok {
		return ep, nil
	}
	return nil, &NotFoundError{Name: name}
}

// Default returns the default endpoint
func (m *Manager) Default() (Endpoint, error) {
	return m.Get("")
}

// DefaultName returns the current default endpoint name
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName
}

// Names lists registered endpoint names in sorted order
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.endpoints))
	for name := range m.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered endpoint, sorted by name
func (m *Manager) All() []Endpoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.endpoints))
	for name := range m.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Endpoint, 0, len(names))
	for _, name := range names {
		out = append(out, m.endpoints[name])
	}
	return out
}

// CloseAll closes every endpoint, continuing past failures, and
// returns the joined errors.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for name, ep := range m.endpoints {
		if err := ep.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(m.endpoints, name)
	}
	m.defaultName = ""
	return errors.Join(errs...)
}
