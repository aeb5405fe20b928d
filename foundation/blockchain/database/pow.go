package database

import (
	"strings"
)

// MaxAttempts is the number of unsuccessful attempts allowed at the requested
// target. After that every unsuccessful attempt lowers the target by one
// character. It is also the interval between progress events.
const MaxAttempts = 1_000_000

// =============================================================================

// POWResult describes the solution found by a proof of work search.
type POWResult struct {
	Hash      string `json:"hash"`      // Hash that solved the puzzle.
	Nonce     uint64 `json:"nonce"`     // Nonce that produced the hash.
	Attempts  uint64 `json:"attempts"`  // Number of hashes computed.
	Requested uint   `json:"requested"` // Number of leading zeros asked for.
	Achieved  uint   `json:"achieved"`  // Number of leading zeros the search settled for.
}

// Degraded reports whether the solution was found at a lower difficulty than
// requested because the attempt budget was exhausted.
func (r POWResult) Degraded() bool {
	return r.Achieved < r.Requested
}

// =============================================================================

// ProofOfWork performs the search for a nonce that gives a block a hash
// with the required number of leading zeros.
type ProofOfWork struct {
	block       Block
	target      string
	maxAttempts uint64
}

// NewProofOfWork constructs a proof of work search for the specified block.
func NewProofOfWork(block Block, difficulty uint) *ProofOfWork {
	return &ProofOfWork{
		block:       block.Copy(),
		target:      strings.Repeat("0", int(difficulty)),
		maxAttempts: MaxAttempts,
	}
}

// Target returns the current hash prefix the search must match.
func (pow *ProofOfWork) Target() string {
	return pow.target
}

// Run searches for the smallest nonce, starting at zero, that solves the
// puzzle. Once maxAttempts unsuccessful attempts have been made, every
// further unsuccessful attempt lowers the target by one character but never
// below one. Run always returns a solution.
func (pow *ProofOfWork) Run(evHandler func(v string, args ...any)) POWResult {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	ev("database: POW: MINING: started: blk[%d]: target[%q]", pow.block.Index, pow.target)
	defer ev("database: POW: MINING: completed: blk[%d]", pow.block.Index)

	result := POWResult{
		Requested: uint(len(pow.target)),
	}

	var nonce uint64
	for {
		result.Attempts++
		if result.Attempts%MaxAttempts == 0 {
			ev("database: POW: MINING: attempts[%d]", result.Attempts)
		}

		// Hash the block and check if we have solved the puzzle.
		pow.block.Nonce = nonce
		hash := pow.block.Fingerprint()
		if isHashSolved(pow.target, hash) {
			pow.block.Hash = hash

			result.Hash = hash
			result.Nonce = nonce
			result.Achieved = uint(len(pow.target))

			ev("database: POW: MINING: SOLVED: blk[%d]: hash[%s]: nonce[%d]: attempts[%d]", pow.block.Index, hash, nonce, result.Attempts)
			return result
		}

		nonce++

		// Lower the bar so the search is guaranteed to finish.
		if result.Attempts >= pow.maxAttempts && len(pow.target) > 1 {
			pow.target = pow.target[:len(pow.target)-1]
			ev("database: POW: MINING: WARNING: attempt budget exhausted: lowering target[%q]", pow.target)
		}
	}
}

// Validate recomputes the block hash and checks it both matches the target
// and equals the hash recorded in the block.
func (pow *ProofOfWork) Validate() bool {
	hash := pow.block.Fingerprint()
	return isHashSolved(pow.target, hash) && hash == pow.block.Hash
}

// =============================================================================

// isHashSolved checks the hash starts with the target.
func isHashSolved(target string, hash string) bool {
	return strings.HasPrefix(hash, target)
}

// HasLeadingZeros reports whether the hash starts with at least the
// specified number of zero characters.
func HasLeadingZeros(hash string, difficulty uint) bool {
	return isHashSolved(strings.Repeat("0", int(difficulty)), hash)
}
