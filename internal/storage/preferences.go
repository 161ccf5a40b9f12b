package storage

import (
	"sync"
)

// Preferences is a small persistent key-value store. Values are opaque
// strings; callers own their encoding.
type Preferences interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(key string) (value string, ok bool, err error)
	// Put overwrites the value stored under key.
	Put(key, value string) error
	Close() error
}

type memoryPreferences struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryPreferences returns a Preferences that lives only as long as the
// process.
func NewMemoryPreferences() Preferences {
	return &memoryPreferences{values: make(map[string]string)}
}

func (p *memoryPreferences) Get(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *memoryPreferences) Put(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (p *memoryPreferences) Close() error { return nil }
