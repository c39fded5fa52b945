package wallet

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashvote/hashvote/pkg/crypto"
)

func TestKeyFile_SaveLoadRoundtrip(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "miner.key")
	pass := []byte("keyfile-pass")

	if err := SaveKeyFile(path, key, pass, fastParams()); err != nil {
		t.Fatalf("SaveKeyFile() error: %v", err)
	}

	loaded, err := LoadKeyFile(path, pass)
	if err != nil {
		t.Fatalf("LoadKeyFile() error: %v", err)
	}

	if !bytes.Equal(loaded.PublicKey(), key.PublicKey()) {
		t.Error("loaded key does not match the saved key")
	}
	if crypto.KeyHash(loaded.PublicKey()) != crypto.KeyHash(key.PublicKey()) {
		t.Error("keyhash must survive a save/load cycle")
	}
}

func TestKeyFile_WrongPassphrase(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "miner.key")

	if err := SaveKeyFile(path, key, []byte("right"), fastParams()); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadKeyFile(path, []byte("wrong")); err == nil {
		t.Error("loading with the wrong passphrase should fail")
	}
}

func TestLoadOrCreateKeyFile_CreatesThenReuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miner.key")
	pass := []byte("pass")

	first, err := LoadOrCreateKeyFile(path, pass)
	if err != nil {
		t.Fatalf("first LoadOrCreateKeyFile() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("keyfile should exist after creation: %v", err)
	}

	second, err := LoadOrCreateKeyFile(path, pass)
	if err != nil {
		t.Fatalf("second LoadOrCreateKeyFile() error: %v", err)
	}
	if !bytes.Equal(first.PublicKey(), second.PublicKey()) {
		t.Error("a restart with the same keyfile must yield the same identity")
	}
}

func TestLoadOrCreateKeyFile_WrongPassphraseNeverOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miner.key")

	if _, err := LoadOrCreateKeyFile(path, []byte("right")); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := LoadOrCreateKeyFile(path, []byte("wrong")); err == nil {
		t.Error("wrong passphrase on an existing keyfile should be an error")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("a failed load must not rewrite the keyfile")
	}
}
