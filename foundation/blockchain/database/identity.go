package database

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
)

// PublicKeyToIdentity converts the public key to the identity string used as
// a sender or receiver. The identity is the hex encoded address of the key.
func PublicKeyToIdentity(pk ecdsa.PublicKey) string {
	return crypto.PubkeyToAddress(pk).String()
}
