// Package types defines core primitive types shared by the chain,
// transaction, and wire packages.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashSize is the length of a hash in bytes.
const HashSize = 32

// Hash represents a 256-bit hash value.
type Hash [HashSize]byte

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the hex-encoded hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalJSON encodes the hash as a hex string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string into a hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(decoded) != HashSize {
		return fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(decoded))
	}
	copy(h[:], decoded)
	return nil
}

// HexToHash converts a hex string to a Hash.
// Returns an error if the string is not exactly 64 hex characters.
func HexToHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// KeyHashSize is the length of a RIPEMD160(SHA256(pubkey)) keyhash.
const KeyHashSize = 20

// KeyHash is a P2PKH-style owner identifier derived from a public key.
type KeyHash [KeyHashSize]byte

// IsZero returns true if the keyhash is all zeros.
func (k KeyHash) IsZero() bool {
	return k == KeyHash{}
}

// String returns the hex-encoded keyhash.
func (k KeyHash) String() string {
	return hex.EncodeToString(k[:])
}

// Bytes returns a copy of the keyhash as a byte slice.
func (k KeyHash) Bytes() []byte {
	b := make([]byte, KeyHashSize)
	copy(b, k[:])
	return b
}

// MarshalJSON encodes the keyhash as a hex string.
func (k KeyHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a hex string into a keyhash.
func (k *KeyHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*k = KeyHash{}
		return nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid keyhash hex: %w", err)
	}
	if len(decoded) != KeyHashSize {
		return fmt.Errorf("keyhash must be %d bytes, got %d", KeyHashSize, len(decoded))
	}
	copy(k[:], decoded)
	return nil
}

// HexToKeyHash converts a hex string to a KeyHash.
func HexToKeyHash(s string) (KeyHash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return KeyHash{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != KeyHashSize {
		return KeyHash{}, fmt.Errorf("keyhash must be %d bytes, got %d", KeyHashSize, len(b))
	}
	var k KeyHash
	copy(k[:], b)
	return k, nil
}
