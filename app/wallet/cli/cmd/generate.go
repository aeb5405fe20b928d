package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/powledger/ledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	path := getPrivateKeyPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("key %s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating key folder: %w", err)
	}

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	if err := crypto.SaveECDSA(path, privateKey); err != nil {
		return fmt.Errorf("saving key: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), database.PublicKeyToIdentity(privateKey.PublicKey))

	return nil
}
