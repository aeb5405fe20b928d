package state

import "github.com/powledger/ledger/foundation/blockchain/database"

// SubmitTransaction validates the transaction and, if it passes, appends it
// to the pending pool. The sender's balance accounts for every debit that is
// already pending.
func (s *State) SubmitTransaction(tx database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateTransaction(tx); err != nil {
		s.evHandler("state: SubmitTransaction: rejected: tx[%s]: %s", tx, err)
		return err
	}

	n := s.mempool.Append(tx)

	s.evHandler("state: SubmitTransaction: accepted: tx[%s]: pending[%d]", tx, n)
	s.evHandler(`viewer: tx: {"id":%q,"sender":%q,"receiver":%q,"amount":%d}`, tx.ID, tx.Sender, tx.Receiver, tx.Amount)

	return nil
}

// =============================================================================

// validateTransaction applies the admission rules. The caller must hold
// the lock.
func (s *State) validateTransaction(tx database.Tx) error {
	if tx.Sender == "" || tx.Receiver == "" {
		return &ValidationError{Reason: ReasonMissingParty, Sender: tx.Sender, Receiver: tx.Receiver, Amount: tx.Amount}
	}

	if tx.Amount == 0 {
		return &ValidationError{Reason: ReasonInvalidAmount, Sender: tx.Sender, Receiver: tx.Receiver}
	}

	if balance := s.balance(tx.Sender); balance < tx.Amount {
		return &ValidationError{Reason: ReasonInsufficientFunds, Sender: tx.Sender, Receiver: tx.Receiver, Amount: tx.Amount, Balance: balance}
	}

	return nil
}
