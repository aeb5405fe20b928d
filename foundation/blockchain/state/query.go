package state

import (
	"github.com/powledger/ledger/foundation/blockchain/database"
)

// Status represents a summary of the ledger.
type Status struct {
	Blocks       int    `json:"blocks"`
	LatestHash   string `json:"latest_hash"`
	Difficulty   uint   `json:"difficulty"`
	MiningReward uint64 `json:"mining_reward"`
	Pending      int    `json:"pending"`
}

// =============================================================================

// QueryBalance derives the balance for the identity by replaying the chain
// and subtracting the identity's pending debits. Pending credits are not
// counted.
func (s *State) QueryBalance(identity string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balance(identity)
}

// IsValid checks every block after genesis has an intact hash, links to its
// parent and meets the ledger's current difficulty.
func (s *State) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 1; i < len(s.chain); i++ {
		block := s.chain[i]
		prevBlock := s.chain[i-1]

		if block.Hash != block.Fingerprint() {
			s.evHandler("state: IsValid: blk[%d]: hash does not match contents", block.Index)
			return false
		}

		if block.PrevHash != prevBlock.Hash {
			s.evHandler("state: IsValid: blk[%d]: previous hash does not match parent", block.Index)
			return false
		}

		if !database.HasLeadingZeros(block.Hash, s.difficulty) {
			s.evHandler("state: IsValid: blk[%d]: hash does not meet difficulty[%d]", block.Index, s.difficulty)
			return false
		}
	}

	return true
}

// AuditBlock runs the proof of work validation for the specified block at
// the ledger's current difficulty.
func (s *State) AuditBlock(index uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index >= uint64(len(s.chain)) {
		return false, ErrBlockNotFound
	}

	pow := database.NewProofOfWork(s.chain[index], s.difficulty)
	return pow.Validate(), nil
}

// RetrieveChain returns a copy of every block in the chain.
func (s *State) RetrieveChain() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := make([]database.Block, len(s.chain))
	for i, block := range s.chain {
		blocks[i] = block.Copy()
	}

	return blocks
}

// QueryBlock returns a copy of the block at the specified index.
func (s *State) QueryBlock(index uint64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index >= uint64(len(s.chain)) {
		return database.Block{}, ErrBlockNotFound
	}

	return s.chain[index].Copy(), nil
}

// RetrieveMempool returns a copy of the pending transactions.
func (s *State) RetrieveMempool() []database.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mempool.Copy()
}

// QueryTransactions returns the confirmed transactions in chain order where
// the identity is the sender or the receiver. If the identity is empty, all
// confirmed transactions are returned.
func (s *State) QueryTransactions(identity string) []database.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	trans := []database.Tx{}
	for _, block := range s.chain {
		for _, tx := range block.Trans {
			if identity == "" || tx.Sender == identity || tx.Receiver == identity {
				trans = append(trans, tx)
			}
		}
	}

	return trans
}

// Status returns a summary of the ledger.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Blocks:       len(s.chain),
		LatestHash:   s.chain[len(s.chain)-1].Hash,
		Difficulty:   s.difficulty,
		MiningReward: s.miningReward,
		Pending:      s.mempool.Count(),
	}
}

// =============================================================================

// balance performs the balance derivation. Arithmetic saturates at zero
// rather than wrapping. The caller must hold the lock.
func (s *State) balance(identity string) uint64 {
	var balance uint64

	for _, block := range s.chain {
		for _, tx := range block.Trans {
			if tx.Sender == identity {
				balance = subSaturate(balance, tx.Amount)
			}
			if tx.Receiver == identity {
				balance = addSaturate(balance, tx.Amount)
			}
		}
	}

	// Subtracting the saturated sum once lands on the same value as
	// subtracting each pending debit in turn.
	return subSaturate(balance, s.mempool.PendingDebits(identity))
}

// subSaturate returns a-b or zero if b is larger.
func subSaturate(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// addSaturate returns a+b or the max value on overflow.
func addSaturate(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}
