package state

import (
	"encoding/json"
	"fmt"

	"github.com/powledger/ledger/foundation/blockchain/database"
)

// MineNewBlock seals every pending transaction, plus a reward for the miner,
// into a new block and appends it to the chain. Mining always produces a
// block. When storage is configured the ledger is saved before returning and
// a failure to save is returned as a StorageError along with the block,
// which remains part of the chain.
func (s *State) MineNewBlock(miner string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: started: miner[%s]", miner)
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	// Pay the miner for the work about to be done.
	s.mempool.Append(database.NewRewardTx(miner, s.miningReward))

	// The entire pool goes into the block, there is no selection.
	prevBlock := s.chain[len(s.chain)-1]
	block := database.NewBlock(uint64(len(s.chain)), s.mempool.Copy(), prevBlock.Hash)

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: trans[%d]", block.Index, len(block.Trans))

	result := block.Mine(s.difficulty, s.evHandler)
	if result.Degraded() {
		s.evHandler("state: MineNewBlock: MINING: WARNING: solved at reduced difficulty: requested[%d]: achieved[%d]", result.Requested, result.Achieved)
	}

	s.chain = append(s.chain, block)
	s.mempool.Truncate()

	// Send an event about this new block.
	s.blockEvent(block)

	if s.storage == nil {
		return block.Copy(), nil
	}

	s.evHandler("state: MineNewBlock: write to storage")

	if err := s.storage.Save(s.snapshot()); err != nil {
		s.evHandler("state: MineNewBlock: ERROR: write to storage: %s", err)
		return block.Copy(), &StorageError{Op: "save", Err: err}
	}

	return block.Copy(), nil
}

// =============================================================================

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockTransJSON, err := json.Marshal(block.Trans)
	if err != nil {
		blockTransJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"index":%d,"hash":%q,"previous_hash":%q,"nonce":%d,"transactions":%s}`, block.Index, block.Hash, block.PrevHash, block.Nonce, string(blockTransJSON))
}
