package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/powledger/ledger/foundation/blockchain/state"
)

// ErrInvalidChain is returned when the chain does not validate.
var ErrInvalidChain = errors.New("chain is not valid")

// Valid audits every block and then validates the chain as a whole.
func Valid(w io.Writer, st *state.State) error {
	status := st.Status()
	fmt.Fprintf(w, "Blocks: %d  Difficulty: %d  MiningReward: %d\n\n", status.Blocks, status.Difficulty, status.MiningReward)

	for i := 1; i < status.Blocks; i++ {
		ok, err := st.AuditBlock(uint64(i))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Block: %d  POW: %t\n", i, ok)
	}

	valid := st.IsValid()
	fmt.Fprintf(w, "\nValid: %t\n", valid)

	if !valid {
		return ErrInvalidChain
	}

	return nil
}
