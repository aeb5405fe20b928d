package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenesisPrevHash is the sentinel previous hash recorded in the genesis block.
const GenesisPrevHash = "0"

// =============================================================================

// Block represents a group of transactions batched together and linked to
// the block before it.
type Block struct {
	Index     uint64    `json:"index"`         // Position in the chain, 0 is the genesis block.
	TimeStamp time.Time `json:"timestamp"`     // Time the block was created.
	Trans     []Tx      `json:"transactions"`  // Transactions in the order they were admitted.
	PrevHash  string    `json:"previous_hash"` // Hash of the previous block in the chain.
	Hash      string    `json:"hash"`          // Hash recorded when the block was sealed.
	Nonce     uint64    `json:"nonce"`         // Value identified to solve the hash solution.
}

// NewBlock constructs a block and records its hash with a zero nonce. The
// hash is a placeholder until the block is mined.
func NewBlock(index uint64, trans []Tx, prevHash string) Block {
	b := Block{
		Index:     index,
		TimeStamp: time.Now().UTC(),
		Trans:     copyTrans(trans),
		PrevHash:  prevHash,
	}
	b.Hash = b.Fingerprint()

	return b
}

// Genesis constructs the first block of every chain.
func Genesis() Block {
	return NewBlock(0, nil, GenesisPrevHash)
}

// Fingerprint returns the hex encoded SHA-256 digest of the block fields.
// The transactions contribute the concatenation of their own fingerprints
// in block order.
func (b Block) Fingerprint() string {
	var trans strings.Builder
	for _, tx := range b.Trans {
		trans.WriteString(tx.Fingerprint())
	}

	data := fmt.Sprintf("%d%d%s%s%d",
		b.Index,
		b.TimeStamp.Unix(),
		trans.String(),
		b.PrevHash,
		b.Nonce,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// Mine performs the proof of work for the block and records the solution.
// Pointer semantics are being used since the nonce and hash are discovered.
func (b *Block) Mine(difficulty uint, evHandler func(v string, args ...any)) POWResult {
	pow := NewProofOfWork(*b, difficulty)
	result := pow.Run(evHandler)

	b.Hash = result.Hash
	b.Nonce = result.Nonce

	return result
}

// Copy returns a copy of the block that doesn't share the transaction
// slice with the original.
func (b Block) Copy() Block {
	b.Trans = copyTrans(b.Trans)
	return b
}

// =============================================================================

// copyTrans returns a copy of the transactions, never nil so an empty set
// serializes as an empty list.
func copyTrans(trans []Tx) []Tx {
	cpy := make([]Tx, len(trans))
	copy(cpy, trans)
	return cpy
}
