// Package miner implements a single miner node: its keypair, chain
// copy, UTXO set, transaction pool, and the cancelable mining worker,
// driven by the seven message types the coordinator sends.
package miner

import (
	"context"
	"sync"

	"github.com/hashvote/hashvote/internal/chain"
	"github.com/hashvote/hashvote/internal/log"
	"github.com/hashvote/hashvote/internal/mempool"
	"github.com/hashvote/hashvote/internal/wire"
	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/crypto"
	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

// Sender delivers an outgoing envelope to the coordinator. Satisfied
// by a wire connection wrapper; kept as an interface so the miner's
// handlers are unit-testable without a real socket.
type Sender interface {
	Send(wire.Envelope) error
}

// Miner owns one participant's full local state: keypair, chain, UTXO
// (embedded in Chain), pool, and in-flight mining worker. All of it is
// guarded by a single mutex.
type Miner struct {
	mu sync.Mutex

	Key      *crypto.PrivateKey
	Chain    *chain.Chain
	Pool     *mempool.Pool
	Verifier Verifier
	send     Sender

	cancel context.CancelFunc
	mining bool
	gen    uint64 // bumped whenever the current worker is superseded
}

// New creates a miner with a fresh chain (genesis only) and empty pool.
func New(key *crypto.PrivateKey, verifier Verifier, send Sender) *Miner {
	return &Miner{
		Key:      key,
		Chain:    chain.New(),
		Pool:     mempool.New(),
		Verifier: verifier,
		send:     send,
	}
}

// KeyHash returns this miner's P2PKH-style owner identifier.
func (m *Miner) KeyHash() types.KeyHash {
	return crypto.KeyHash(m.Key.PublicKey())
}

// HandleTransaction standalone-validates t against the local UTXO
// snapshot and inserts it into the pool on success; on failure it is
// silently dropped, with a log line.
func (m *Miner) HandleTransaction(t *tx.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.Chain.UTXOSnapshot()

	if _, err := t.ValidateWithUTXOs(snap); err != nil {
		log.Miner.Debug().Err(err).Str("tx", t.Hash().String()).Msg("dropping invalid transaction")
		return
	}
	if m.Pool.Conflicts(t) {
		log.Miner.Debug().Str("tx", t.Hash().String()).Msg("dropping conflicting transaction")
		return
	}
	m.Pool.Add(t)
}

// HandleMine starts a mining worker for the given target, unless one is
// already running, in which case the command is ignored.
func (m *Miner) HandleMine(target types.Hash) {
	m.mu.Lock()
	if m.mining {
		m.mu.Unlock()
		return
	}
	m.mining = true
	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	tip := m.Chain.Tip()
	snap := m.Chain.UTXOSnapshot()
	poolTxs := m.Pool.SelectAll()
	keyHash := m.KeyHash()
	m.mu.Unlock()

	go m.mine(ctx, gen, tip, snap, poolTxs, target, keyHash)
}

// HandleVerify validates blk against the local chain and returns the
// vote. A selfish miner's Verifier rejects unconditionally without
// running validation at all.
func (m *Miner) HandleVerify(blk *block.Block) bool {
	m.mu.Lock()
	tip := m.Chain.Tip()
	snap := m.Chain.UTXOSnapshot()
	v := m.Verifier
	m.mu.Unlock()

	return v.Verify(tip, snap, blk)
}

// HandleVerdict applies a round's outcome. On accept, blk is appended,
// the UTXO set updated, and every transaction blk consumed is removed
// from the pool. Either way the in-flight mining worker is cancelled.
func (m *Miner) HandleVerdict(accept bool, blk *block.Block) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopWorkerLocked()

	if !accept {
		return
	}
	if err := m.Chain.Append(blk); err != nil {
		log.Miner.Error().Err(err).Msg("verdict accept: block failed to append")
		return
	}
	m.Pool.RemoveConfirmed(chain.SpentByBlock(blk))
}

// HandleChain implements the join/integrity chain() message: if
// candidate is valid and strictly longer than the local chain, the
// local chain/UTXO/pool are replaced (the pool is refiltered against
// the new UTXO). If the local chain is strictly longer and valid, the
// local chain is returned as a counter-proposal.
func (m *Miner) HandleChain(candidate []*block.Block) (counterProposal []*block.Block, replaced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	local := m.Chain.Blocks()

	if _, err := chain.ValidateChain(candidate, chain.BlockReward); err == nil && len(candidate) > len(local) {
		if err := m.Chain.Replace(candidate); err != nil {
			log.Miner.Error().Err(err).Msg("chain replace failed after validating candidate")
			return nil, false
		}
		m.Pool.RefilterAgainstUTXO(m.Chain.UTXOSnapshot())
		return nil, true
	}

	if len(local) > len(candidate) {
		return local, false
	}
	return nil, false
}

// HandleKeys returns this miner's keypair for shipping to the
// coordinator. Educational only.
func (m *Miner) HandleKeys() (privPEM, pubDER []byte) {
	return m.Key.PEM(), m.Key.PublicKey()
}

// HandleClose cancels any in-flight worker so the caller can tear down
// the socket and exit the process.
func (m *Miner) HandleClose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopWorkerLocked()
}

// stopWorkerLocked cancels the in-flight worker, if any, and bumps the
// generation so the canceled worker's cleanup cannot clobber the state
// of a worker started by a later mine command.
func (m *Miner) stopWorkerLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mining = false
	m.gen++
}
