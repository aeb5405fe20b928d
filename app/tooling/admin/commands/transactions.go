package commands

import (
	"fmt"
	"io"

	"github.com/powledger/ledger/foundation/blockchain/state"
)

// Transactions writes the confirmed transactions, optionally only those
// involving the identity, followed by the pending transactions.
func Transactions(w io.Writer, st *state.State, identity string) error {
	status := st.Status()
	fmt.Fprintf(w, "LatestBlockHash: %s\n\n", status.LatestHash)

	for _, tx := range st.QueryTransactions(identity) {
		fmt.Fprintf(w, "ID: %s  Sender: %s  Receiver: %s  Amount: %d  TimeStamp: %s\n",
			tx.ID, tx.Sender, tx.Receiver, tx.Amount, tx.TimeStamp.Format("2006-01-02T15:04:05Z07:00"))
	}

	fmt.Fprintf(w, "\nPending: %d\n", status.Pending)
	for _, tx := range st.RetrieveMempool() {
		if identity != "" && tx.Sender != identity && tx.Receiver != identity {
			continue
		}
		fmt.Fprintf(w, "ID: %s  Sender: %s  Receiver: %s  Amount: %d\n", tx.ID, tx.Sender, tx.Receiver, tx.Amount)
	}

	return nil
}
