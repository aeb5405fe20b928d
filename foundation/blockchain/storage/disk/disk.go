// Package disk implements the ability to read and write the ledger snapshot
// to a single JSON document on disk.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/powledger/ledger/foundation/blockchain/database"
)

// Disk represents the serialization implementation for reading and storing
// the ledger snapshot in a file on disk. This implements the state.Storage
// interface.
type Disk struct {
	mu        sync.Mutex
	path      string
	evHandler func(v string, args ...any)
}

// New constructs a Disk value for use. The folder holding the snapshot file
// is created if it doesn't exist.
func New(path string, evHandler func(v string, args ...any)) (*Disk, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating snapshot folder: %w", err)
	}

	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Disk{path: path, evHandler: ev}, nil
}

// Path returns the location of the snapshot file.
func (d *Disk) Path() string {
	return d.path
}

// Save writes the snapshot to disk in a human readable format. The document
// is written to a temporary file first and then renamed over the previous
// snapshot so a failed write never leaves a partial document behind.
func (d *Disk) Save(snapshot database.Snapshot) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(d.path), filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp, d.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	d.evHandler("disk: Save: blocks[%d]: pending[%d]: path[%s]", len(snapshot.Chain), len(snapshot.Pending), d.path)

	return nil
}

// Read reads and decodes the snapshot on disk.
func (d *Disk) Read() (database.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if err != nil {
		return database.Snapshot{}, err
	}

	var snapshot database.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return database.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	if err := snapshot.CheckGenesis(); err != nil {
		return database.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}

	return snapshot.Copy(), nil
}

// Load returns the snapshot on disk. If the snapshot is missing or can't be
// read, the fresh snapshot is returned instead and no error is reported.
func (d *Disk) Load(fresh database.Snapshot) database.Snapshot {
	snapshot, err := d.Read()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d.evHandler("disk: Load: no snapshot found, starting fresh: path[%s]", d.path)
		return fresh

	case err != nil:
		d.evHandler("disk: Load: WARNING: snapshot unreadable, starting fresh: path[%s]: %s", d.path, err)
		return fresh
	}

	d.evHandler("disk: Load: blocks[%d]: pending[%d]: path[%s]", len(snapshot.Chain), len(snapshot.Pending), d.path)

	return snapshot
}
