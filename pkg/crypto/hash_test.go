package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/hashvote/hashvote/pkg/types"
)

func hexToHash(t *testing.T, s string) types.Hash {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex: %v", err)
	}
	var h types.Hash
	copy(h[:], b)
	return h
}

func TestSha256(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{
			name:  "empty input",
			input: []byte{},
			want:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "hello",
			input: []byte("hello"),
			want:  "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:  "hashvote",
			input: []byte("hashvote"),
			want:  "6a2752151b394fb23204674fd1ee2b2fa04da03b58120f8f0919b96a726f5669",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sha256(tt.input)
			want := hexToHash(t, tt.want)
			if got != want {
				t.Errorf("Sha256(%q) = %x, want %x", tt.input, got, want)
			}
		})
	}
}

func TestSha256_Deterministic(t *testing.T) {
	data := []byte("deterministic test input")
	h1 := Sha256(data)
	h2 := Sha256(data)
	if h1 != h2 {
		t.Errorf("Sha256 is not deterministic: %x != %x", h1, h2)
	}
}

func TestSha256_DifferentInputs(t *testing.T) {
	h1 := Sha256([]byte("input A"))
	h2 := Sha256([]byte("input B"))
	if h1 == h2 {
		t.Error("different inputs produced the same hash")
	}
}

func TestDoubleSha256(t *testing.T) {
	input := []byte("hello")
	got := DoubleSha256(input)
	want := hexToHash(t, "9595c9df90075148eb06860365df33584b75bff782a510c6cd4883a419833d50")

	if got != want {
		t.Errorf("DoubleSha256(%q) = %x, want %x", input, got, want)
	}
}

func TestDoubleSha256_NotSameAsSha256(t *testing.T) {
	data := []byte("test data")
	single := Sha256(data)
	double := DoubleSha256(data)
	if single == double {
		t.Error("DoubleSha256 should not equal single Sha256")
	}
}

func TestKeyHash_NonZero(t *testing.T) {
	kh := KeyHash([]byte("a fake public key for testing"))
	if kh.IsZero() {
		t.Error("KeyHash of non-empty input should not be zero")
	}
}

func TestKeyHash_Deterministic(t *testing.T) {
	pub := []byte("another fake public key")
	a := KeyHash(pub)
	b := KeyHash(pub)
	if a != b {
		t.Errorf("KeyHash is not deterministic: %x != %x", a, b)
	}
}

func TestKeyHash_DifferentInputs(t *testing.T) {
	a := KeyHash([]byte("pub A"))
	b := KeyHash([]byte("pub B"))
	if a == b {
		t.Error("different pubkeys produced the same keyhash")
	}
}

func TestHashConcat(t *testing.T) {
	a := Sha256([]byte("left"))
	b := Sha256([]byte("right"))
	result := HashConcat(a, b)

	if result == (types.Hash{}) {
		t.Error("HashConcat returned zero hash")
	}

	reversed := HashConcat(b, a)
	if result == reversed {
		t.Error("HashConcat(a,b) should differ from HashConcat(b,a)")
	}

	again := HashConcat(a, b)
	if result != again {
		t.Error("HashConcat is not deterministic")
	}
}

func TestHashConcat_EqualsManualConcat(t *testing.T) {
	a := Sha256([]byte("left"))
	b := Sha256([]byte("right"))

	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	want := DoubleSha256(buf[:])

	got := HashConcat(a, b)
	if got != want {
		t.Errorf("HashConcat = %x, want %x", got, want)
	}
}
