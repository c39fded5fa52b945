package mempool

import (
	"testing"

	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

func dataTx(seed byte) *tx.Transaction {
	return &tx.Transaction{
		Version: 1,
		Outputs: []tx.Output{{Data: []byte{seed}, KeyHash: types.KeyHash{seed}}},
	}
}

func TestPool_Add_IdempotentByHash(t *testing.T) {
	p := New()
	tr := dataTx(1)
	p.Add(tr)
	p.Add(tr)

	if p.Len() != 1 {
		t.Fatalf("len = %d, want 1", p.Len())
	}
}

func TestPool_SelectAll_PreservesInsertionOrder(t *testing.T) {
	p := New()
	t1, t2, t3 := dataTx(1), dataTx(2), dataTx(3)
	p.Add(t1)
	p.Add(t2)
	p.Add(t3)

	all := p.SelectAll()
	if len(all) != 3 || all[0].Hash() != t1.Hash() || all[1].Hash() != t2.Hash() || all[2].Hash() != t3.Hash() {
		t.Fatalf("insertion order not preserved: %+v", all)
	}
}

func TestPool_RemoveConfirmed(t *testing.T) {
	p := New()
	t1, t2 := dataTx(1), dataTx(2)
	p.Add(t1)
	p.Add(t2)

	p.RemoveConfirmed([]*tx.Transaction{t1})

	if p.Has(t1.Hash()) {
		t.Fatal("t1 should have been removed")
	}
	if !p.Has(t2.Hash()) {
		t.Fatal("t2 should remain")
	}
	all := p.SelectAll()
	if len(all) != 1 || all[0].Hash() != t2.Hash() {
		t.Fatalf("unexpected remaining set: %+v", all)
	}
}

func TestPool_Conflicts(t *testing.T) {
	p := New()
	outpoint := types.Outpoint{TxID: types.Hash{0x01}, Index: 0}

	spender := &tx.Transaction{
		Version: 1,
		Inputs:  []tx.Input{{PrevOut: outpoint, PubKey: []byte("k"), Signature: []byte("s")}},
		Outputs: []tx.Output{{Value: 1, KeyHash: types.KeyHash{0x02}}},
	}
	p.Add(spender)

	other := &tx.Transaction{
		Version: 1,
		Inputs:  []tx.Input{{PrevOut: outpoint, PubKey: []byte("k2"), Signature: []byte("s2")}},
		Outputs: []tx.Output{{Value: 2, KeyHash: types.KeyHash{0x03}}},
	}
	if !p.Conflicts(other) {
		t.Fatal("expected a conflict on the shared outpoint")
	}
}

// emptyUTXO implements tx.UTXOProvider, always reporting "not found" so
// every transaction with inputs fails ValidateWithUTXOs.
type emptyUTXO struct{}

func (emptyUTXO) GetUTXO(types.Outpoint) (tx.Output, bool) { return tx.Output{}, false }

func TestPool_RefilterAgainstUTXO_DropsInvalid(t *testing.T) {
	p := New()
	spending := &tx.Transaction{
		Version: 1,
		Inputs:  []tx.Input{{PrevOut: types.Outpoint{TxID: types.Hash{0x01}}, PubKey: []byte("k"), Signature: []byte("s")}},
		Outputs: []tx.Output{{Value: 1, KeyHash: types.KeyHash{0x02}}},
	}
	dataOnly := dataTx(9)
	p.Add(spending)
	p.Add(dataOnly)

	p.RefilterAgainstUTXO(emptyUTXO{})

	if p.Has(spending.Hash()) {
		t.Fatal("spending tx with no matching UTXO should be dropped")
	}
	if !p.Has(dataOnly.Hash()) {
		t.Fatal("data-only tx needs no UTXO and should remain")
	}
}
