// Package nameservice reads a folder of wallet keys and creates a name
// service lookup for the identities they control.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/powledger/ledger/foundation/blockchain/database"
)

// NameService maintains a map of identities for name lookup.
type NameService struct {
	identities map[string]string
}

// New constructs a NameService with the identities of every .ecdsa key file
// found under root. The name is the file name without its extension. A
// missing folder results in an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		identities: make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading key %s: %w", fileName, err)
		}

		identity := database.PublicKeyToIdentity(privateKey.PublicKey)
		ns.identities[identity] = strings.TrimSuffix(filepath.Base(fileName), ".ecdsa")

		return nil
	}

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return &ns, nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified identity. Identities without a
// name are returned as is.
func (ns *NameService) Lookup(identity string) string {
	name, exists := ns.identities[identity]
	if !exists {
		return identity
	}
	return name
}

// Copy returns a copy of the map of identities and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.identities))
	for identity, name := range ns.identities {
		cpy[identity] = name
	}
	return cpy
}
