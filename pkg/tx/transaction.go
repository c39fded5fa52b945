// Package tx defines transaction types, canonical serialization, and
// validation.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/hashvote/hashvote/pkg/crypto"
	"github.com/hashvote/hashvote/pkg/types"
)

// Transaction is a version, an ordered list of inputs, and an ordered
// list of outputs. LockTime is unused by validation; a coinbase
// transaction (which has no inputs to vary its hash) repurposes it to
// carry a per-block value (the mining worker stores the current Unix
// time in nanoseconds), so that the coinbase of every block produces
// a distinct transaction id and therefore distinct UTXO outpoints.
type Transaction struct {
	Version  uint32   `json:"version"`
	Inputs   []Input  `json:"inputs"`
	Outputs  []Output `json:"outputs"`
	LockTime uint64   `json:"locktime"`
}

// Input references a prior outpoint being spent. Signature is produced
// by signing the canonical serialization of the transaction's outputs
// under the owner's private key.
type Input struct {
	PrevOut   types.Outpoint `json:"prevout"`
	PubKey    []byte         `json:"pubkey"`
	Signature []byte         `json:"signature"`
}

// inputJSON is the JSON representation of Input with hex-encoded byte fields.
type inputJSON struct {
	PrevOut   types.Outpoint `json:"prevout"`
	PubKey    *string        `json:"pubkey"`
	Signature *string        `json:"signature"`
}

// MarshalJSON encodes the input with hex-encoded pubkey and signature.
func (in Input) MarshalJSON() ([]byte, error) {
	j := inputJSON{PrevOut: in.PrevOut}
	if in.PubKey != nil {
		p := hex.EncodeToString(in.PubKey)
		j.PubKey = &p
	}
	if in.Signature != nil {
		s := hex.EncodeToString(in.Signature)
		j.Signature = &s
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an input with hex-encoded pubkey and signature.
func (in *Input) UnmarshalJSON(data []byte) error {
	var j inputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	in.PrevOut = j.PrevOut
	if j.PubKey != nil {
		b, err := hex.DecodeString(*j.PubKey)
		if err != nil {
			return err
		}
		in.PubKey = b
	}
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return err
		}
		in.Signature = b
	}
	return nil
}

// Output is either a numeric amount of satoshis or an arbitrary data
// payload, paired with the keyhash of the new owner. IsData reports
// which kind an output is.
type Output struct {
	Value   uint64        `json:"value"`
	Data    []byte        `json:"data,omitempty"`
	KeyHash types.KeyHash `json:"keyhash"`
}

// IsData reports whether this is a data-payload output rather than a
// numeric-amount output.
func (o Output) IsData() bool {
	return len(o.Data) > 0
}

// outputJSON is the JSON representation of Output with a hex-encoded
// data field.
type outputJSON struct {
	Value   uint64        `json:"value"`
	Data    *string       `json:"data,omitempty"`
	KeyHash types.KeyHash `json:"keyhash"`
}

// MarshalJSON encodes the output with hex-encoded data.
func (o Output) MarshalJSON() ([]byte, error) {
	j := outputJSON{Value: o.Value, KeyHash: o.KeyHash}
	if o.Data != nil {
		d := hex.EncodeToString(o.Data)
		j.Data = &d
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an output with hex-encoded data.
func (o *Output) UnmarshalJSON(data []byte) error {
	var j outputJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	o.Value = j.Value
	o.KeyHash = j.KeyHash
	if j.Data != nil {
		b, err := hex.DecodeString(*j.Data)
		if err != nil {
			return err
		}
		o.Data = b
	}
	return nil
}

// Hash computes the transaction id: dual-SHA256 of the canonical
// serialization of the whole transaction.
func (tx *Transaction) Hash() types.Hash {
	return crypto.DoubleSha256(tx.CanonicalBytes())
}

// CanonicalBytes returns the canonical byte representation of the
// entire transaction, used to compute its id.
// Format: version(4) | input_count(4) | [prevout(36) + pubkey_len(4) + pubkey
// + sig_len(4) + sig]... | output_count(4) | [value(8) + data_len(4) + data +
// keyhash(20)]... | locktime(8)
func (tx *Transaction) CanonicalBytes() []byte {
	var buf []byte

	buf = binary.LittleEndian.AppendUint32(buf, tx.Version)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, in.PrevOut.TxID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PrevOut.Index)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.PubKey)))
		buf = append(buf, in.PubKey...)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.Signature)))
		buf = append(buf, in.Signature...)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	buf = appendOutputs(buf, tx.Outputs)

	buf = binary.LittleEndian.AppendUint64(buf, tx.LockTime)

	return buf
}

// SigningBytes returns the canonical serialization of the transaction's
// outputs only. Each input's signature is produced over this exact
// byte string, independent of the other inputs, so that adding a
// signature to one input never invalidates another's.
func (tx *Transaction) SigningBytes() []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	buf = appendOutputs(buf, tx.Outputs)
	return buf
}

func appendOutputs(buf []byte, outputs []Output) []byte {
	for _, out := range outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(out.Data)))
		buf = append(buf, out.Data...)
		buf = append(buf, out.KeyHash[:]...)
	}
	return buf
}

// IsCoinbase reports whether this is a coinbase transaction: zero inputs
// and exactly one output, which carries a numeric amount. A zero-input
// transaction with a data output is an ordinary data transaction.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 0 && len(tx.Outputs) == 1 && !tx.Outputs[0].IsData()
}

// BuildCoinbase creates the coinbase transaction paying reward+fees to
// the miner's keyhash. height is stored unchanged in LockTime so that
// the coinbase of every block produces a distinct transaction id even
// when paying an identical amount to the same miner; the mining worker
// passes the current Unix time in nanoseconds, not a block height.
func BuildCoinbase(minerKeyHash types.KeyHash, reward uint64, height uint64) *Transaction {
	return &Transaction{
		Version:  1,
		Inputs:   nil,
		LockTime: height,
		Outputs: []Output{{
			Value:   reward,
			KeyHash: minerKeyHash,
		}},
	}
}

// TotalNumericOutputValue returns the sum of all numeric (non-data)
// output values. Returns an error if the sum overflows uint64.
func (tx *Transaction) TotalNumericOutputValue() (uint64, error) {
	var total uint64
	for _, out := range tx.Outputs {
		if out.IsData() {
			continue
		}
		if total > math.MaxUint64-out.Value {
			return 0, fmt.Errorf("output value overflow")
		}
		total += out.Value
	}
	return total, nil
}
