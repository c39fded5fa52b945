package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// KeyBits is the RSA modulus size mandated for every participant.
const KeyBits = 2048

// Signer signs a 32-byte hash with a private key.
type Signer interface {
	Sign(hash []byte) ([]byte, error)
	PublicKey() []byte
}

// Verifier verifies a signature against a hash and a public key.
type Verifier interface {
	Verify(hash, signature, publicKey []byte) bool
}

// PrivateKey wraps an RSA-2048 private key.
type PrivateKey struct {
	key *rsa.PrivateKey
}

// GenerateKey creates a new random RSA-2048 keypair.
func GenerateKey() (*PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromPEM parses a PKCS#1 PEM-encoded RSA private key, the same
// deterministic format produced by PrivateKey.PEM.
func PrivateKeyFromPEM(data []byte) (*PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// Sign produces a PKCS#1 v1.5 signature over a 32-byte hash.
func (pk *PrivateKey) Sign(hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, pk.key, crypto.SHA256, hash)
	if err != nil {
		return nil, fmt.Errorf("rsa sign: %w", err)
	}
	return sig, nil
}

// PublicKey returns the canonical DER (PKCS#1) encoding of the public key.
// This encoding is deterministic: two processes holding the same key
// produce byte-identical output, which is required so keyhash derivation
// agrees across participants.
func (pk *PrivateKey) PublicKey() []byte {
	return x509.MarshalPKCS1PublicKey(&pk.key.PublicKey)
}

// PEM returns the PKCS#1 PEM encoding of the private key.
func (pk *PrivateKey) PEM() []byte {
	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(pk.key),
	}
	return pem.EncodeToMemory(block)
}

// VerifySignature checks a PKCS#1 v1.5 signature against a 32-byte hash
// and a DER-encoded (PKCS#1) public key. Returns false on any error,
// including a malformed key or signature — never panics.
func VerifySignature(hash, signature, publicKey []byte) bool {
	pub, err := x509.ParsePKCS1PublicKey(publicKey)
	if err != nil {
		return false
	}
	if len(hash) != 32 {
		return false
	}
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, hash, signature) == nil
}

// RSAVerifier implements the Verifier interface.
type RSAVerifier struct{}

// Verify checks a signature against a hash and a public key.
func (v RSAVerifier) Verify(hash, signature, publicKey []byte) bool {
	return VerifySignature(hash, signature, publicKey)
}
