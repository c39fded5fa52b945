package types

import "fmt"

// Outpoint identifies a specific output of a prior transaction, the
// unit of spending: every input names exactly one, and the UTXO set is
// keyed by it.
type Outpoint struct {
	TxID  Hash   `json:"txid"`
	Index uint32 `json:"index"`
}

// String returns "txid:index" in hex.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxID.String(), o.Index)
}
