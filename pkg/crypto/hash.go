// Package crypto provides the cryptographic primitives shared by every
// participant: SHA256, dual-SHA256, the P2PKH keyhash, and RSA signing.
package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // mandated by the owner keyhash scheme

	"github.com/hashvote/hashvote/pkg/types"
)

// Sha256 computes a single SHA256 hash of the input data.
func Sha256(data []byte) types.Hash {
	return sha256.Sum256(data)
}

// DoubleSha256 computes Sha256(Sha256(data)).
func DoubleSha256(data []byte) types.Hash {
	first := Sha256(data)
	return Sha256(first[:])
}

// KeyHash derives the P2PKH-style owner identifier from a public key:
// RIPEMD160(SHA256(pubkey)).
func KeyHash(pubKey []byte) types.KeyHash {
	sum := sha256.Sum256(pubKey)
	r := ripemd160.New()
	r.Write(sum[:])
	digest := r.Sum(nil)

	var kh types.KeyHash
	copy(kh[:], digest)
	return kh
}

// HashConcat hashes the concatenation of two hashes. Used when pairing
// nodes in the merkle tree.
func HashConcat(a, b types.Hash) types.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return DoubleSha256(buf[:])
}
