package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var validCmd = &cobra.Command{
	Use:   "valid",
	Short: "Check the node's chain is valid",
	RunE:  validRun,
}

func init() {
	rootCmd.AddCommand(validCmd)
}

func validRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := call(http.MethodGet, "/v1/chain/valid", nil, &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "chain valid: %t\n", resp.Valid)

	return nil
}
