package miner

import (
	"context"
	"time"

	"github.com/hashvote/hashvote/internal/chain"
	"github.com/hashvote/hashvote/internal/log"
	"github.com/hashvote/hashvote/internal/wire"
	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

// cancelCheckMask bounds how often the worker polls its cancel signal:
// every 2^14 nonce attempts.
const cancelCheckMask = 1<<14 - 1

// mine assembles a candidate block (coinbase first, then every pool
// entry that still validates against snap, in insertion order) and iterates the nonce until the header
// hash meets target, polling ctx for cancellation periodically and
// re-stamping the header time whenever the nonce wraps around. On
// success it sends solution(block) to the coordinator. On return it
// clears m.mining unless a newer worker generation has superseded it.
func (m *Miner) mine(ctx context.Context, gen uint64, tip *block.Block, snap chain.UTXOSet, poolTxs []*tx.Transaction, target types.Hash, keyHash types.KeyHash) {
	defer func() {
		m.mu.Lock()
		if m.gen == gen {
			m.mining = false
			m.cancel = nil
		}
		m.mu.Unlock()
	}()

	var totalFees uint64
	included := make([]*tx.Transaction, 0, len(poolTxs))
	for _, t := range poolTxs {
		fee, err := t.ValidateWithUTXOs(snap)
		if err != nil {
			// Stale relative to the snapshot taken at mine time; the
			// handler that inserted it already validated it once, so
			// this should not happen in practice, but never mine an
			// invalid block over it.
			continue
		}
		included = append(included, t)
		totalFees += fee
	}

	coinbase := tx.BuildCoinbase(keyHash, chain.BlockReward+totalFees, uint64(time.Now().UnixNano()))
	txs := make([]*tx.Transaction, 0, 1+len(included))
	txs = append(txs, coinbase)
	txs = append(txs, included...)

	hashes := make([]types.Hash, len(txs))
	for i, t := range txs {
		hashes[i] = t.Hash()
	}

	header := &block.Header{
		Version:    block.HeaderVersion,
		ParentHash: tip.Hash(),
		MerkleRoot: block.ComputeMerkleRoot(hashes),
		Time:       uint64(time.Now().Unix()),
		Target:     target,
	}

	started := false
	for nonce := uint64(0); ; nonce++ {
		if nonce&cancelCheckMask == 0 {
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
		if nonce == 0 && started {
			// The nonce space wrapped around; re-stamp so the header
			// doesn't go stale across an exhaustive search.
			header.Time = uint64(time.Now().Unix())
		}
		started = true

		header.Nonce = nonce
		if header.MeetsTarget() {
			blk := block.NewBlock(header, txs)
			if err := m.send.Send(wire.Envelope{Type: wire.TypeSolution, Block: blk}); err != nil {
				log.Miner.Error().Err(err).Msg("failed to send solution")
			}
			return
		}
	}
}
