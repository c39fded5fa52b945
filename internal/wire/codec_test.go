package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

func TestWriteReadFrame_RoundTrip_Mine(t *testing.T) {
	target := types.Hash{0x01, 0x02}
	env := Envelope{Type: TypeMine, Target: &target}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, env); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != TypeMine || got.Target == nil || *got.Target != target {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestWriteReadFrame_RoundTrip_Transaction(t *testing.T) {
	transaction := &tx.Transaction{
		Version: 1,
		Outputs: []tx.Output{{Value: 500, KeyHash: types.KeyHash{0x09}}},
	}
	env := Envelope{Type: TypeTransaction, Transaction: transaction}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, env); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Transaction == nil || got.Transaction.Outputs[0].Value != 500 {
		t.Fatalf("transaction round-trip mismatch: %+v", got.Transaction)
	}
}

func TestWriteReadFrame_RoundTrip_VerifyReply(t *testing.T) {
	env := Envelope{Type: TypeVerify, Accept: BoolPtr(true)}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, env); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Accept == nil || !*got.Accept {
		t.Fatalf("accept round-trip mismatch: %+v", got)
	}
}

func TestWriteReadFrame_RoundTrip_Chain(t *testing.T) {
	blk := &block.Block{Header: &block.Header{Version: 1, Time: 1}}
	env := Envelope{Type: TypeChain, Chain: []*block.Block{blk}}

	var buf bytes.Buffer
	if err := WriteFrame(&buf, env); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Chain) != 1 || got.Chain[0].Header.Time != 1 {
		t.Fatalf("chain round-trip mismatch: %+v", got.Chain)
	}
}

func TestWriteReadFrame_MultipleFramesOnOneStream(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Envelope{Type: TypeKeys}); err != nil {
		t.Fatal(err)
	}
	if err := WriteFrame(&buf, Envelope{Type: TypeClose}); err != nil {
		t.Fatal(err)
	}

	first, err := ReadFrame(&buf)
	if err != nil || first.Type != TypeKeys {
		t.Fatalf("first frame: %+v, err=%v", first, err)
	}
	second, err := ReadFrame(&buf)
	if err != nil || second.Type != TypeClose {
		t.Fatalf("second frame: %+v, err=%v", second, err)
	}
}

func TestReadFrame_TruncatedStreamIsError(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, Envelope{Type: TypeKeys}); err != nil {
		t.Fatal(err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:2])
	if _, err := ReadFrame(truncated); err == nil {
		t.Fatal("expected error reading a truncated frame")
	}
}

func TestReadFrame_OversizedLengthPrefixIsRejected(t *testing.T) {
	var lenBuf [4]byte
	lenBuf[0] = 0xff
	lenBuf[1] = 0xff
	lenBuf[2] = 0xff
	lenBuf[3] = 0xff
	r := io.MultiReader(bytes.NewReader(lenBuf[:]))
	if _, err := ReadFrame(r); err != ErrFrameTooLarge {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}
