package storage

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Object is a blob held by Memory.
type Object struct {
	ContentType string
	Data        []byte
}

// Memory keeps objects in a map. It is used by tests and by the memory
// store driver when no upload directory is wanted.
type Memory struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: strings.TrimRight(baseURL, "/"), objects: map[string]Object{}}
}

func (m *Memory) Put(_ context.Context, key, contentType string, body io.Reader) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = Object{ContentType: contentType, Data: data}
	m.mu.Unlock()
	return m.BaseURL + "/" + key, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) KeyOf(url string) (string, bool) {
	prefix := m.BaseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Get returns the stored object.
func (m *Memory) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o, ok
}

// Len reports how many objects are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
