// This program is a wallet for the ledger. It manages the keys that back an
// identity and talks to a node on behalf of that identity.
package main

import "github.com/powledger/ledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
