package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	to    string
	value uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value to another identity",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Identity receiving the value.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	if to == "" {
		return errors.New("the --to identity is required")
	}

	_, identity, err := loadIdentity()
	if err != nil {
		return err
	}

	req := struct {
		Sender   string `json:"sender"`
		Receiver string `json:"receiver"`
		Amount   uint64 `json:"amount"`
	}{
		Sender:   identity,
		Receiver: to,
		Amount:   value,
	}

	var tx struct {
		ID string `json:"id"`
	}
	if err := call(http.MethodPost, "/v1/tx/submit", req, &tx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "transaction %s pending: %s -> %s: %d\n", tx.ID, identity, to, value)

	return nil
}
