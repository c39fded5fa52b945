package block

import (
	"errors"
	"testing"

	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

// maxTarget accepts any hash; used so PoW checks don't interfere with
// structural-validation tests.
var maxTarget = func() types.Hash {
	var h types.Hash
	for i := range h {
		h[i] = 0xff
	}
	return h
}()

func validBlock(t *testing.T) *Block {
	t.Helper()

	coinbase := tx.BuildCoinbase(types.KeyHash{0x01}, 5000000000, 1700000000)
	txHashes := []types.Hash{coinbase.Hash()}
	merkleRoot := ComputeMerkleRoot(txHashes)

	header := &Header{
		Version:    HeaderVersion,
		ParentHash: types.Hash{0xaa},
		MerkleRoot: merkleRoot,
		Time:       1700000000,
		Target:     maxTarget,
	}

	return NewBlock(header, []*tx.Transaction{coinbase})
}

func TestBlock_Validate_Valid(t *testing.T) {
	blk := validBlock(t)
	if err := blk.Validate(); err != nil {
		t.Errorf("valid block should pass: %v", err)
	}
}

func TestBlock_Validate_NilHeader(t *testing.T) {
	blk := &Block{Header: nil}
	if err := blk.Validate(); !errors.Is(err, ErrNilHeader) {
		t.Errorf("got %v, want ErrNilHeader", err)
	}
}

func TestBlock_Validate_BadVersion(t *testing.T) {
	blk := validBlock(t)
	blk.Header.Version = 2
	if err := blk.Validate(); !errors.Is(err, ErrBadVersion) {
		t.Errorf("got %v, want ErrBadVersion", err)
	}
}

func TestBlock_Validate_ZeroTime(t *testing.T) {
	blk := validBlock(t)
	blk.Header.Time = 0
	if err := blk.Validate(); !errors.Is(err, ErrZeroTime) {
		t.Errorf("got %v, want ErrZeroTime", err)
	}
}

func TestBlock_Validate_InsufficientWork(t *testing.T) {
	blk := validBlock(t)
	blk.Header.Target = types.Hash{} // zero target, no hash can meet it
	if err := blk.Validate(); !errors.Is(err, ErrInsufficientWork) {
		t.Errorf("got %v, want ErrInsufficientWork", err)
	}
}

func TestBlock_Validate_NoTransactions(t *testing.T) {
	blk := validBlock(t)
	blk.Transactions = nil
	if err := blk.Validate(); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("got %v, want ErrNoTransactions", err)
	}
}

func TestBlock_Validate_FirstTxNotCoinbase(t *testing.T) {
	blk := validBlock(t)
	blk.Transactions[0] = &tx.Transaction{
		Version: 1,
		Inputs:  []tx.Input{{PrevOut: types.Outpoint{Index: 1}}},
		Outputs: []tx.Output{{Value: 1}},
	}
	if err := blk.Validate(); !errors.Is(err, ErrNoCoinbase) {
		t.Errorf("got %v, want ErrNoCoinbase", err)
	}
}

func TestBlock_Validate_MultipleCoinbase(t *testing.T) {
	coinbase := tx.BuildCoinbase(types.KeyHash{0x01}, 5000000000, 1)
	coinbase2 := tx.BuildCoinbase(types.KeyHash{0x02}, 5000000000, 2)

	txHashes := []types.Hash{coinbase.Hash(), coinbase2.Hash()}
	header := &Header{
		Version:    HeaderVersion,
		ParentHash: types.Hash{0xaa},
		MerkleRoot: ComputeMerkleRoot(txHashes),
		Time:       1700000000,
		Target:     maxTarget,
	}
	blk := NewBlock(header, []*tx.Transaction{coinbase, coinbase2})

	if err := blk.Validate(); !errors.Is(err, ErrMultipleCoinbase) {
		t.Errorf("got %v, want ErrMultipleCoinbase", err)
	}
}

func TestBlock_Validate_BadMerkleRoot(t *testing.T) {
	blk := validBlock(t)
	blk.Header.MerkleRoot = types.Hash{0x99}
	if err := blk.Validate(); !errors.Is(err, ErrBadMerkleRoot) {
		t.Errorf("got %v, want ErrBadMerkleRoot", err)
	}
}

func TestBlock_Validate_InvalidTxStructure(t *testing.T) {
	blk := validBlock(t)
	// Append a structurally invalid non-coinbase tx (no outputs) and
	// recompute the merkle root so only tx.Validate fails.
	bad := &tx.Transaction{
		Version: 1,
		Inputs:  []tx.Input{{PrevOut: types.Outpoint{Index: 1}, PubKey: []byte("k"), Signature: []byte("s")}},
	}
	blk.Transactions = append(blk.Transactions, bad)
	hashes := []types.Hash{blk.Transactions[0].Hash(), bad.Hash()}
	blk.Header.MerkleRoot = ComputeMerkleRoot(hashes)

	err := blk.Validate()
	if err == nil {
		t.Fatal("expected validation error for malformed tx")
	}
}

func TestBlock_Hash(t *testing.T) {
	blk := validBlock(t)
	if blk.Hash() != blk.Header.Hash() {
		t.Errorf("Block.Hash should delegate to Header.Hash")
	}
}
