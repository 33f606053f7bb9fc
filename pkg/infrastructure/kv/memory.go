package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Store
type Memory struct {
	data   map[string]string
	mutex  sync.RWMutex
	closed bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Verify interface compliance
var _ Store = (*Memory)(nil)

// Get returns the value stored under key
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.closed {
		return "", false, ErrClosed
	}
	value, found := m.data[key]
	return value, found, nil
}

// Set stores value under key
func (m *Memory) Set(ctx context.Context, key, value string) error {
	return m.SetMany(ctx, map[string]string{key: value})
}

// SetMany stores all entries under one lock
func (m *Memory) SetMany(_ context.Context, entries map[string]string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return ErrClosed
	}
	for key, value := range entries {
		m.data[key] = value
	}
	return nil
}

// Close releases the store; later calls fail with ErrClosed
func (m *Memory) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	return nil
}
