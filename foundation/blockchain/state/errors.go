package state

import (
	"errors"
	"fmt"
)

// ErrBlockNotFound is returned when a block is requested by an index that
// is not part of the chain.
var ErrBlockNotFound = errors.New("block not found")

// =============================================================================

// Reason identifies why a transaction was rejected.
type Reason string

// Set of reasons a transaction can be rejected.
const (
	ReasonMissingParty      Reason = "missing_party"
	ReasonInvalidAmount     Reason = "invalid_amount"
	ReasonInsufficientFunds Reason = "insufficient_funds"
)

// ValidationError is returned when a transaction can't be admitted into the
// pending pool. The pool is left unchanged.
type ValidationError struct {
	Reason   Reason
	Sender   string
	Receiver string
	Amount   uint64
	Balance  uint64
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	switch ve.Reason {
	case ReasonMissingParty:
		return "transaction must include sender and receiver"
	case ReasonInvalidAmount:
		return "transaction amount must be greater than 0"
	case ReasonInsufficientFunds:
		return fmt.Sprintf("insufficient balance for %s, bal %d, needed %d", ve.Sender, ve.Balance, ve.Amount)
	}

	return fmt.Sprintf("transaction rejected: %s", ve.Reason)
}

// IsValidationError checks if an error of type ValidationError exists.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationError returns a copy of the ValidationError pointer.
func GetValidationError(err error) *ValidationError {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return ve
}

// =============================================================================

// StorageError is returned when the ledger can't be written to storage. The
// in-memory ledger is not affected by the failure.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (se *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s", se.Op, se.Err)
}

// Unwrap provides access to the underlying storage error.
func (se *StorageError) Unwrap() error {
	return se.Err
}

// IsStorageError checks if an error of type StorageError exists.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
