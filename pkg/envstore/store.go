package envstore

import (
	"errors"
	"os"
	"sort"
	"strings"
	"sync"
)

// ErrEmptyKey is returned when a store is asked to write an empty key.
var ErrEmptyKey = errors.New("envstore: key must not be empty")

// Store reads and writes option values.
type Store interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	Unset(key string) error
}

// Blank reports whether value is empty or whitespace only.
func Blank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// LookupNonBlank returns the stored value when it is present and not blank.
func LookupNonBlank(store Store, key string) (string, bool) {
	if store == nil {
		return "", false
	}
	value, ok := store.Lookup(key)
	if !ok || Blank(value) {
		return "", false
	}
	return value, true
}

type osStore struct{}

// OS returns a Store backed by the process environment.
func OS() Store {
	return osStore{}
}

func (osStore) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

func (osStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return os.Setenv(key, value)
}

func (osStore) Unset(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return os.Unsetenv(key)
}

// Memory is an in-memory Store intended for tests and embedding.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory builds a Memory store seeded with a copy of initial.
func NewMemory(initial map[string]string) *Memory {
	values := make(map[string]string, len(initial))
	for key, value := range initial {
		values[key] = value
	}
	return &Memory{values: values}
}

func (m *Memory) Lookup(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok
}

func (m *Memory) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Unset(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Keys returns the stored keys sorted alphabetically.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a detached copy of the stored values.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for key, value := range m.values {
		out[key] = value
	}
	return out
}
