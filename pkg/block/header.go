package block

import (
	"fmt"
	"math/big"

	"github.com/hashvote/hashvote/pkg/crypto"
	"github.com/hashvote/hashvote/pkg/types"
)

// Header is a block header. Target is the hashcash upper bound: a header
// hash is valid iff its numeric value is <= Target (both interpreted as
// big-endian 256-bit integers).
type Header struct {
	Version    uint32     `json:"version"`
	ParentHash types.Hash `json:"parent_hash"`
	MerkleRoot types.Hash `json:"merkle_root"`
	Time       uint64     `json:"time"`
	Target     types.Hash `json:"target"`
	Nonce      uint64     `json:"nonce"`
}

// HeaderVersion is the only version this software produces or accepts.
const HeaderVersion = 1

// Hash computes the header hash: dual-SHA256 over the textual
// representation of every field, in field order.
func (h *Header) Hash() types.Hash {
	return crypto.DoubleSha256([]byte(h.canonicalText()))
}

// canonicalText renders every header field as text and concatenates them
// in declaration order, per the wire-level "textual representation" rule.
func (h *Header) canonicalText() string {
	return fmt.Sprintf("%d%s%s%d%s%d",
		h.Version, h.ParentHash.String(), h.MerkleRoot.String(), h.Time, h.Target.String(), h.Nonce)
}

// TargetInt returns the header's target as a big.Int.
func (h *Header) TargetInt() *big.Int {
	return new(big.Int).SetBytes(h.Target[:])
}

// MeetsTarget reports whether the header's own hash satisfies its own
// target: hash(header) <= target.
func (h *Header) MeetsTarget() bool {
	hash := h.Hash()
	hashInt := new(big.Int).SetBytes(hash[:])
	return hashInt.Cmp(h.TargetInt()) <= 0
}
