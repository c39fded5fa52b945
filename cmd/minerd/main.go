// minerd is one independent miner process. It dials the coordinator,
// then sits in the message loop until told to close.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashvote/hashvote/config"
	"github.com/hashvote/hashvote/internal/log"
	"github.com/hashvote/hashvote/internal/miner"
	"github.com/hashvote/hashvote/internal/wallet"
	"github.com/hashvote/hashvote/pkg/crypto"
)

func main() {
	cfg, _, err := config.Load(config.AppMiner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logging: %v\n", err)
		os.Exit(1)
	}

	key, err := loadKey(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load keypair")
	}

	var verifier miner.Verifier = miner.HonestVerifier{}
	if cfg.Miner.Selfish {
		verifier = miner.SelfishVerifier{}
		log.Miner.Warn().Msg("running with the selfish strategy: every foreign block gets a no vote")
	}

	client, err := miner.Dial(cfg.Miner.CoordinatorAddr, key, verifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to reach coordinator")
	}
	log.Miner.Info().
		Str("coordinator", cfg.Miner.CoordinatorAddr).
		Str("keyhash", client.Miner().KeyHash().String()).
		Msg("connected")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		client.Close()
	}()

	if err := client.Run(); err != nil {
		log.Fatal().Err(err).Msg("connection lost")
	}
	log.Miner.Info().Msg("connection closed; exiting")
}

// loadKey yields this miner's identity: the persisted keyfile when one
// is configured, a fresh in-memory keypair otherwise.
func loadKey(cfg *config.Config) (*crypto.PrivateKey, error) {
	if cfg.Miner.KeyFile == "" {
		return crypto.GenerateKey()
	}
	return wallet.LoadOrCreateKeyFile(cfg.Miner.KeyFile, []byte(cfg.Miner.KeyPass))
}
