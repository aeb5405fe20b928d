package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine a block paying the reward to your identity",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) error {
	_, identity, err := loadIdentity()
	if err != nil {
		return err
	}

	req := struct {
		Miner string `json:"miner"`
	}{
		Miner: identity,
	}

	var blk struct {
		Index        uint64 `json:"index"`
		Hash         string `json:"hash"`
		Nonce        uint64 `json:"nonce"`
		Transactions []any  `json:"transactions"`
	}
	if err := call(http.MethodPost, "/v1/mining/mine", req, &blk); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "block %d mined: hash[%s] nonce[%d] trans[%d]\n", blk.Index, blk.Hash, blk.Nonce, len(blk.Transactions))

	return nil
}
