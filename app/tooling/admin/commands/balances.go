package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/powledger/ledger/foundation/blockchain/state"
)

// Balances writes the balance of the identity, or of every identity found
// in the chain when no identity is provided.
func Balances(w io.Writer, st *state.State, identity string) error {
	status := st.Status()
	fmt.Fprintf(w, "LatestBlockHash: %s\n\n", status.LatestHash)

	identities := []string{identity}
	if identity == "" {
		identities = knownIdentities(st)
	}

	for _, identity := range identities {
		fmt.Fprintf(w, "Identity: %s  Balance: %d\n", identity, st.QueryBalance(identity))
	}

	return nil
}

// knownIdentities returns every sender and receiver in the chain and the
// pending pool in sorted order.
func knownIdentities(st *state.State) []string {
	seen := make(map[string]bool)
	for _, tx := range append(st.QueryTransactions(""), st.RetrieveMempool()...) {
		seen[tx.Sender] = true
		seen[tx.Receiver] = true
	}
	delete(seen, "")

	identities := make([]string, 0, len(seen))
	for identity := range seen {
		identities = append(identities, identity)
	}
	sort.Strings(identities)

	return identities
}
