// Package storagetest provides an in-memory ObjectStore.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// MemoryStore keeps objects in a map. Set FailDelete or FailPut to inject errors.
type MemoryStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	FailPut    error
	FailDelete error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Put(_ context.Context, key, _ string, body io.Reader) error {
	if m.FailPut != nil {
		return m.FailPut
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) URL(key string) string {
	return "https://storage.example.com/bucket/" + key
}

// Has reports whether key is stored.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// ErrInjected is a convenience failure for tests.
var ErrInjected = errors.New("injected storage failure")
