// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"sync"

	"github.com/powledger/ledger/foundation/blockchain/database"
	"github.com/powledger/ledger/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Storage interface represents the behavior required to be implemented by any
// package providing support for persisting the ledger after a block is mined.
type Storage interface {
	Save(snapshot database.Snapshot) error
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Difficulty   uint               // Leading zeros required for a fresh ledger.
	MiningReward uint64             // Reward paid per block for a fresh ledger.
	Snapshot     *database.Snapshot // When provided the ledger is restored from it.
	Storage      Storage            // Optional, written after every mined block.
	EvHandler    EventHandler
}

// State manages the chain and the pending pool. Every operation, read or
// write, holds the same lock for its full duration.
type State struct {
	mu sync.Mutex

	chain        []database.Block
	difficulty   uint
	mempool      *mempool.Mempool
	miningReward uint64

	storage   Storage
	evHandler EventHandler
}

// New constructs a ledger. Without a snapshot the ledger starts with only the
// genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	snapshot := database.NewSnapshot(cfg.Difficulty, cfg.MiningReward)
	if cfg.Snapshot != nil {
		if err := cfg.Snapshot.CheckGenesis(); err != nil {
			return nil, err
		}
		snapshot = cfg.Snapshot.Copy()
	}

	state := State{
		chain:        snapshot.Chain,
		difficulty:   snapshot.Difficulty,
		mempool:      mempool.NewFrom(snapshot.Pending),
		miningReward: snapshot.MiningReward,
		storage:      cfg.Storage,
		evHandler:    ev,
	}

	ev("state: New: blocks[%d]: pending[%d]: difficulty[%d]: reward[%d]", len(state.chain), state.mempool.Count(), state.difficulty, state.miningReward)

	return &state, nil
}

// Snapshot returns a copy of the full ledger for storage.
func (s *State) Snapshot() database.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// =============================================================================

// snapshot captures the ledger. The caller must hold the lock.
func (s *State) snapshot() database.Snapshot {
	snap := database.Snapshot{
		Chain:        s.chain,
		Difficulty:   s.difficulty,
		Pending:      s.mempool.Copy(),
		MiningReward: s.miningReward,
	}

	return snap.Copy()
}
