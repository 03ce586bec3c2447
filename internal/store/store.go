// Package store defines the durable key-value boundary the shopping list
// persists through. Each backend keeps a single serialized blob under one
// well-known key.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// DefaultKey is the name the list is stored under unless configured otherwise.
const DefaultKey = "items"

// Store reads and writes one serialized blob.
//
// Load reports ok=false with a nil error when nothing has been stored yet;
// err is reserved for the medium itself failing. Save overwrites the blob.
type Store interface {
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
}

// ErrUnavailable is returned by Memory.Save after SetFailSaves(true).
var ErrUnavailable = errors.New("store unavailable")

// Memory is an in-process Store. It is not durable past the process and is
// meant for tests and throwaway sessions.
type Memory struct {
	mu   sync.Mutex
	data []byte
	set  bool

	failSaves bool
	saves     int
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory { return &Memory{} }

// NewMemoryWith returns a Memory store that already holds data.
func NewMemoryWith(data []byte) *Memory {
	return &Memory{data: slices.Clone(data), set: true}
}

func (m *Memory) Load(_ context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, false, nil
	}
	return slices.Clone(m.data), true, nil
}

func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return ErrUnavailable
	}
	m.data = slices.Clone(data)
	m.set = true
	m.saves++
	return nil
}

// SetFailSaves makes every later Save return ErrUnavailable without writing,
// until it is called again with false.
func (m *Memory) SetFailSaves(fail bool) {
	m.mu.Lock()
	m.failSaves = fail
	m.mu.Unlock()
}

// SaveCount reports how many Saves succeeded.
func (m *Memory) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Bytes returns a copy of the stored blob, or nil if nothing was saved.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data)
}
