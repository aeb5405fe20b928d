package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	_, identity, err := loadIdentity()
	if err != nil {
		return err
	}

	var bal struct {
		Balance uint64 `json:"balance"`
	}
	if err := call(http.MethodGet, "/v1/balances/"+identity, nil, &bal); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "identity: %s balance: %d\n", identity, bal.Balance)

	return nil
}
