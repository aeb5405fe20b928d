// Package database provides the records that make up the ledger: the
// transaction, the block and the proof of work used to seal a block, plus
// the snapshot document that captures the whole ledger for storage.
package database

import (
	"errors"
	"fmt"
)

// Snapshot represents the full ledger as it's written to and read from
// storage.
type Snapshot struct {
	Chain        []Block `json:"chain"`
	Difficulty   uint    `json:"difficulty"`
	Pending      []Tx    `json:"pending_transactions"`
	MiningReward uint64  `json:"mining_reward"`
}

// NewSnapshot constructs a snapshot of a fresh ledger holding only the
// genesis block.
func NewSnapshot(difficulty uint, miningReward uint64) Snapshot {
	return Snapshot{
		Chain:        []Block{Genesis()},
		Difficulty:   difficulty,
		Pending:      []Tx{},
		MiningReward: miningReward,
	}
}

// Copy returns a deep copy of the snapshot.
func (s Snapshot) Copy() Snapshot {
	chain := make([]Block, len(s.Chain))
	for i, block := range s.Chain {
		chain[i] = block.Copy()
	}

	return Snapshot{
		Chain:        chain,
		Difficulty:   s.Difficulty,
		Pending:      copyTrans(s.Pending),
		MiningReward: s.MiningReward,
	}
}

// CheckGenesis makes sure the snapshot's chain starts with a genesis block.
func (s Snapshot) CheckGenesis() error {
	if len(s.Chain) == 0 {
		return errors.New("snapshot has no genesis block")
	}

	genesis := s.Chain[0]
	if genesis.Index != 0 || genesis.PrevHash != GenesisPrevHash {
		return fmt.Errorf("snapshot first block is not a genesis block, index %d, previous hash %q", genesis.Index, genesis.PrevHash)
	}

	return nil
}
