package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tx is the value transfer record between two identities.
type Tx struct {
	ID        string    `json:"id"`        // Unique id assigned when the transaction is created.
	Sender    string    `json:"sender"`    // Identity debited. Empty for system minted rewards.
	Receiver  string    `json:"receiver"`  // Identity credited.
	Amount    uint64    `json:"amount"`    // Value moved from the sender to the receiver.
	TimeStamp time.Time `json:"timestamp"` // Time the transaction was created.
	Signature string    `json:"signature"` // Reserved for a sender signature, never populated.
}

// NewTx constructs a new transaction. No validation is performed here, the
// ledger validates a transaction when it's admitted into the pending pool.
func NewTx(sender string, receiver string, amount uint64) Tx {
	return Tx{
		ID:        uuid.NewString(),
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		TimeStamp: time.Now().UTC(),
	}
}

// NewRewardTx constructs the system minted transaction that pays a miner
// for sealing a block.
func NewRewardTx(miner string, reward uint64) Tx {
	return NewTx("", miner, reward)
}

// IsReward reports whether the transaction was minted by the system.
func (tx Tx) IsReward() bool {
	return tx.Sender == ""
}

// Fingerprint returns the hex encoded SHA-256 digest of the fields that make
// up the transaction. The id is not part of the digest.
func (tx Tx) Fingerprint() string {
	data := fmt.Sprintf("%s%s%d%d%s",
		tx.Sender,
		tx.Receiver,
		tx.Amount,
		tx.TimeStamp.Unix(),
		tx.Signature,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	sender := tx.Sender
	if tx.IsReward() {
		sender = "<reward>"
	}

	return fmt.Sprintf("%s:%s->%s:%d", tx.ID, sender, tx.Receiver, tx.Amount)
}
