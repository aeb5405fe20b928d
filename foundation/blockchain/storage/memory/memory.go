// Package memory implements the ability to keep the ledger snapshot in
// memory.
package memory

import (
	"errors"
	"sync"

	"github.com/powledger/ledger/foundation/blockchain/database"
)

// ErrNoSnapshot is returned by Read when nothing has been saved.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Memory represents the serialization implementation for keeping the ledger
// snapshot in memory. This implements the state.Storage interface.
type Memory struct {
	mu       sync.RWMutex
	snapshot *database.Snapshot
	saves    int
	failWith error
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// FailWith makes every following Save return the specified error. Passing
// nil makes Save succeed again.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failWith = err
}

// Save keeps a copy of the snapshot.
func (m *Memory) Save(snapshot database.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return m.failWith
	}

	cpy := snapshot.Copy()
	m.snapshot = &cpy
	m.saves++

	return nil
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.saves
}

// Read returns a copy of the last saved snapshot.
func (m *Memory) Read() (database.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.snapshot == nil {
		return database.Snapshot{}, ErrNoSnapshot
	}

	return m.snapshot.Copy(), nil
}

// Load returns the last saved snapshot or the fresh snapshot if nothing has
// been saved.
func (m *Memory) Load(fresh database.Snapshot) database.Snapshot {
	snapshot, err := m.Read()
	if err != nil {
		return fresh
	}

	return snapshot
}
