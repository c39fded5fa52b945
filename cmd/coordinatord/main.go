// coordinatord is the central server: it accepts miner connections and
// drives mining rounds from a line-oriented prompt.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashvote/hashvote/config"
	"github.com/hashvote/hashvote/internal/coordinator"
	"github.com/hashvote/hashvote/internal/log"
	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

// integrityWindow is how long an integrity sweep waits for miners to
// counter-propose their chains.
const integrityWindow = 2 * time.Second

// keysTimeout bounds a keys request to a single miner.
const keysTimeout = 5 * time.Second

func main() {
	cfg, _, err := config.Load(config.AppCoordinator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing logging: %v\n", err)
		os.Exit(1)
	}

	c := coordinator.New()
	addr := fmt.Sprintf("%s:%d", cfg.Coordinator.ListenAddr, cfg.Coordinator.Port)
	if err := c.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start coordinator")
	}

	// A signal tears everything down the same way the quit command does.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		c.Stop()
		os.Exit(0)
	}()

	repl(c)
	c.Stop()
}

// repl reads commands until EOF or quit. The mine command blocks the
// prompt until the round settles, mirroring the protocol's one-round-
// at-a-time design.
func repl(c *coordinator.Coordinator) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "mine":
			mined, err := c.Mine()
			switch {
			case err != nil:
				fmt.Printf("mine: %v\n", err)
			case mined:
				fmt.Printf("block accepted; chain height %d\n", c.Height())
			default:
				fmt.Println("no block mined this round")
			}

		case "integrity":
			height, err := c.Integrity(integrityWindow)
			if err != nil {
				fmt.Printf("integrity: %v\n", err)
				continue
			}
			fmt.Printf("consensus chain height %d\n", height)

		case "status":
			fmt.Printf("miners: %d, chain height: %d\n", c.MinerCount(), c.Height())

		case "peers":
			ids := c.MinerIDs()
			sort.Ints(ids)
			if len(ids) == 0 {
				fmt.Println("no miners connected")
				continue
			}
			for _, id := range ids {
				fmt.Printf("miner %d\n", id)
			}

		case "keys":
			if len(fields) != 2 {
				fmt.Println("usage: keys <miner-id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("usage: keys <miner-id>")
				continue
			}
			kp, err := c.RequestKeys(id, keysTimeout)
			if err != nil {
				fmt.Printf("keys: %v\n", err)
				continue
			}
			fmt.Printf("public key (DER hex): %x\n", kp.PublicDER)
			fmt.Printf("%s", kp.PrivatePEM)

		case "tx":
			if len(fields) < 2 {
				fmt.Println("usage: tx <payload text>")
				continue
			}
			payload := strings.Join(fields[1:], " ")
			t := &tx.Transaction{
				Version: 1,
				Outputs: []tx.Output{{Data: []byte(payload), KeyHash: types.KeyHash{}}},
			}
			if err := c.BroadcastTransaction(t); err != nil {
				fmt.Printf("tx: %v\n", err)
				continue
			}
			fmt.Printf("transaction %s sent to all miners\n", t.Hash())

		case "quit", "exit":
			return

		case "help":
			fmt.Println("commands: mine, integrity, status, peers, keys <id>, tx <payload>, quit")

		default:
			fmt.Printf("unknown command %q (try help)\n", fields[0])
		}
	}
}
