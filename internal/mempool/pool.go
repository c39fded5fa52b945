// Package mempool holds a miner's pending transactions: those that
// have passed standalone validation but are not yet in a block.
// There is no fee prioritization; the pool is a plain
// insertion-ordered FIFO.
package mempool

import (
	"sync"

	"github.com/hashvote/hashvote/pkg/tx"
	"github.com/hashvote/hashvote/pkg/types"
)

// Pool is a miner-local, insertion-ordered set of pending transactions,
// keyed by transaction hash for idempotent inserts and fast removal.
type Pool struct {
	mu     sync.Mutex
	order  []types.Hash
	txs    map[types.Hash]*tx.Transaction
	spends map[types.Outpoint]types.Hash // outpoint -> txHash, for conflict detection
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{
		txs:    make(map[types.Hash]*tx.Transaction),
		spends: make(map[types.Outpoint]types.Hash),
	}
}

// Add inserts t. Re-adding a transaction already present is a no-op
// (idempotent by tx id). The caller must have already
// standalone-validated t against the current UTXO snapshot.
func (p *Pool) Add(t *tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := t.Hash()
	if _, exists := p.txs[h]; exists {
		return
	}
	p.txs[h] = t
	p.order = append(p.order, h)
	for _, in := range t.Inputs {
		p.spends[in.PrevOut] = h
	}
}

// Has reports whether a transaction with hash h is in the pool.
func (p *Pool) Has(h types.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.txs[h]
	return ok
}

// Conflicts reports whether t spends an outpoint some other pooled
// transaction already spends.
func (p *Pool) Conflicts(t *tx.Transaction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, in := range t.Inputs {
		if owner, ok := p.spends[in.PrevOut]; ok && owner != t.Hash() {
			return true
		}
	}
	return false
}

// Remove deletes a single transaction by hash, if present.
func (p *Pool) Remove(h types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(h)
}

func (p *Pool) removeLocked(h types.Hash) {
	t, ok := p.txs[h]
	if !ok {
		return
	}
	delete(p.txs, h)
	for _, in := range t.Inputs {
		if p.spends[in.PrevOut] == h {
			delete(p.spends, in.PrevOut)
		}
	}
	for i, oh := range p.order {
		if oh == h {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// RemoveConfirmed removes every transaction in confirmed from the pool.
// Called after an accepted block consumes pool entries.
func (p *Pool) RemoveConfirmed(confirmed []*tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range confirmed {
		p.removeLocked(t.Hash())
	}
}

// SelectAll returns every pooled transaction in insertion order, the
// order a mining worker assembles them into a candidate block.
func (p *Pool) SelectAll() []*tx.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*tx.Transaction, 0, len(p.order))
	for _, h := range p.order {
		out = append(out, p.txs[h])
	}
	return out
}

// Len returns the number of pooled transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// RefilterAgainstUTXO drops every pooled transaction that no longer
// validates against utxo (e.g. after a chain replacement invalidates
// some of its inputs).
func (p *Pool) RefilterAgainstUTXO(utxo tx.UTXOProvider) {
	p.mu.Lock()
	txs := make([]*tx.Transaction, len(p.order))
	for i, h := range p.order {
		txs[i] = p.txs[h]
	}
	p.mu.Unlock()

	for _, t := range txs {
		if _, err := t.ValidateWithUTXOs(utxo); err != nil {
			p.Remove(t.Hash())
		}
	}
}
