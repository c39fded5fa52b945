// Package wire implements the length-delimited, JSON-framed protocol
// spoken between the coordinator and miner processes.
package wire

import (
	"encoding/hex"

	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

// Type identifies a message's purpose. The same tag can carry different
// payload shapes depending on direction (e.g. "verify" is a request
// coordinator->miner and a vote reply miner->coordinator); Envelope
// carries whichever fields are relevant and leaves the rest zero.
type Type string

const (
	TypeTransaction Type = "transaction"
	TypeMine        Type = "mine"
	TypeVerify      Type = "verify"
	TypeVerdict     Type = "verdict"
	TypeChain       Type = "chain"
	TypeKeys        Type = "keys"
	TypeClose       Type = "close_connection"
	TypeSolution    Type = "solution"
)

// Envelope is the single wire message shape. Only the fields relevant
// to Type are populated; encoding/json omits the rest.
type Envelope struct {
	Type Type `json:"type"`

	// mine (C->M)
	Target *types.Hash `json:"target,omitempty"`

	// transaction (C->M)
	Transaction *tx.Transaction `json:"transaction,omitempty"`

	// verify (C->M request), verdict (C->M), solution (M->C)
	Block *block.Block `json:"block,omitempty"`

	// verify (M->C vote reply), verdict (C->M)
	Accept *bool `json:"accept,omitempty"`

	// chain (both directions)
	Chain []*block.Block `json:"chain,omitempty"`

	// keys (M->C reply): PEM-encoded private key, hex-encoded DER public key
	PrivateKeyPEM string `json:"private_key_pem,omitempty"`
	PublicKey     string `json:"public_key,omitempty"`
}

// BoolPtr is a convenience constructor for Envelope.Accept.
func BoolPtr(b bool) *bool { return &b }

// NewKeysReply builds a keys() reply envelope from a raw PEM-encoded
// private key and DER-encoded public key.
func NewKeysReply(privPEM, pubDER []byte) Envelope {
	return Envelope{
		Type:          TypeKeys,
		PrivateKeyPEM: string(privPEM),
		PublicKey:     hex.EncodeToString(pubDER),
	}
}

// PublicKeyDER decodes the hex-encoded public key of a keys reply back
// to DER bytes.
func (e Envelope) PublicKeyDER() ([]byte, error) {
	return hex.DecodeString(e.PublicKey)
}
