package chain

import (
	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

// UTXOSet maps every outpoint produced by the chain that no later input
// has spent to the output it produced. It is reconstructible from the
// chain alone by replaying every block from genesis.
type UTXOSet map[types.Outpoint]tx.Output

// NewUTXOSet returns an empty UTXO set.
func NewUTXOSet() UTXOSet {
	return make(UTXOSet)
}

// GetUTXO implements tx.UTXOProvider.
func (u UTXOSet) GetUTXO(outpoint types.Outpoint) (tx.Output, bool) {
	o, ok := u[outpoint]
	return o, ok
}

// Clone returns an independent copy of the set.
func (u UTXOSet) Clone() UTXOSet {
	out := make(UTXOSet, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Apply removes every outpoint t spends and adds every output t
// produces. It mutates the receiver and must be called only after t has
// validated against it.
func (u UTXOSet) Apply(t *tx.Transaction) {
	for _, in := range t.Inputs {
		delete(u, in.PrevOut)
	}
	id := t.Hash()
	for i, out := range t.Outputs {
		u[types.Outpoint{TxID: id, Index: uint32(i)}] = out
	}
}
