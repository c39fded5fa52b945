package wallet

import (
	"fmt"
	"os"

	"github.com/hashvote/hashvote/pkg/crypto"
)

// SaveKeyFile seals key's PEM encoding under passphrase and writes it
// to path with owner-only permissions.
func SaveKeyFile(path string, key *crypto.PrivateKey, passphrase []byte, params KDFParams) error {
	sealed, err := Seal(key.PEM(), passphrase, params)
	if err != nil {
		return fmt.Errorf("seal keyfile: %w", err)
	}
	if err := os.WriteFile(path, sealed, 0600); err != nil {
		return fmt.Errorf("write keyfile: %w", err)
	}
	return nil
}

// LoadKeyFile opens the sealed keyfile at path and parses the keypair.
func LoadKeyFile(path string, passphrase []byte) (*crypto.PrivateKey, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyfile: %w", err)
	}
	pemBytes, err := Open(sealed, passphrase)
	if err != nil {
		return nil, fmt.Errorf("open keyfile: %w", err)
	}
	key, err := crypto.PrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse keyfile: %w", err)
	}
	return key, nil
}

// LoadOrCreateKeyFile loads the keypair at path, or generates a fresh
// one and saves it there if the file does not exist yet. A wrong
// passphrase on an existing file is an error, never an overwrite.
func LoadOrCreateKeyFile(path string, passphrase []byte) (*crypto.PrivateKey, error) {
	if _, err := os.Stat(path); err == nil {
		return LoadKeyFile(path, passphrase)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat keyfile: %w", err)
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := SaveKeyFile(path, key, passphrase, DefaultKDFParams()); err != nil {
		return nil, err
	}
	return key, nil
}
