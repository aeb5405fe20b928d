// Package mempool maintains the pool of transactions that have been admitted
// but are not yet part of a block.
package mempool

import (
	"github.com/powledger/ledger/foundation/blockchain/database"
)

// Mempool represents the pending transactions in the order they were
// admitted. It is not safe for concurrent use, the ledger serializes all
// access to it.
type Mempool struct {
	pool []database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// NewFrom constructs a mempool holding the specified transactions in order.
func NewFrom(trans []database.Tx) *Mempool {
	mp := New()
	for _, tx := range trans {
		mp.Append(tx)
	}
	return mp
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	return len(mp.pool)
}

// Append adds a transaction to the tail of the pool.
func (mp *Mempool) Append(tx database.Tx) int {
	mp.pool = append(mp.pool, tx)
	return len(mp.pool)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.pool = nil
}

// Copy returns a copy of all the transactions in admission order.
func (mp *Mempool) Copy() []database.Tx {
	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)
	return cpy
}

// PendingDebits returns the total amount the specified identity is sending
// in transactions that are still in the pool. The sum saturates at the
// maximum uint64 so a single saturating subtraction from a balance matches
// subtracting each debit one at a time.
func (mp *Mempool) PendingDebits(sender string) uint64 {
	var total uint64
	for _, tx := range mp.pool {
		if tx.Sender != sender {
			continue
		}

		// Saturate rather than wrap.
		if total+tx.Amount < total {
			return ^uint64(0)
		}
		total += tx.Amount
	}
	return total
}
