// Package coordinator implements the central server of the star
// topology: it accepts miner connections, forwards user-built
// transactions, drives the mining round state machine, tallies votes,
// and broadcasts verdicts and chain updates.
package coordinator

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hashvote/hashvote/internal/chain"
	"github.com/hashvote/hashvote/internal/log"
	"github.com/hashvote/hashvote/internal/wire"
	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/tx"
)

var (
	// ErrStopped is returned by commands issued after Stop.
	ErrStopped = errors.New("coordinator: stopped")

	// ErrNoMiners is returned by Mine when no miner is connected.
	ErrNoMiners = errors.New("coordinator: no miners connected")

	// ErrRoundInProgress is returned by commands that need an idle
	// round while one is running.
	ErrRoundInProgress = errors.New("coordinator: mining round in progress")

	// ErrUnknownMiner is returned for a per-miner command naming an id
	// that is not connected.
	ErrUnknownMiner = errors.New("coordinator: no such miner")

	// ErrKeysTimeout is returned when a miner does not answer a keys
	// request in time.
	ErrKeysTimeout = errors.New("coordinator: timed out waiting for keys reply")
)

// minerConn is one connected miner. Frame writes go through send so
// messages from different coordinator goroutines never interleave on
// the stream.
type minerConn struct {
	id   int
	conn net.Conn
	wmu  sync.Mutex
}

func (mc *minerConn) send(env wire.Envelope) error {
	mc.wmu.Lock()
	defer mc.wmu.Unlock()
	return wire.WriteFrame(mc.conn, env)
}

// KeyPair is a miner's keypair as shipped in a keys reply.
type KeyPair struct {
	PrivatePEM []byte
	PublicDER  []byte
}

// Coordinator owns the connected-miner registry, its own chain copy,
// and the round state machine. One mutex guards all of it, so every
// state transition is observed atomically; per-connection writes are
// additionally serialized inside minerConn.
type Coordinator struct {
	mu     sync.Mutex
	ln     net.Listener
	miners map[int]*minerConn
	nextID int
	chain  *chain.Chain
	round  round
	closed bool

	// chainReplies is non-nil while an integrity sweep collects
	// counter-proposals from miners.
	chainReplies map[int][]*block.Block

	// keyWaiters delivers keys replies to a pending RequestKeys call.
	keyWaiters map[int]chan KeyPair

	wg     sync.WaitGroup
	logger zerolog.Logger
}

// New creates a coordinator holding only the genesis chain.
func New() *Coordinator {
	return &Coordinator{
		miners:     make(map[int]*minerConn),
		nextID:     1,
		chain:      chain.New(),
		keyWaiters: make(map[int]chan KeyPair),
		logger:     log.Coordinator,
	}
}

// Start binds the listener and begins accepting miner connections in a
// background goroutine. It returns once the listener is bound.
func (c *Coordinator) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("coordinator listen: %w", err)
	}

	c.mu.Lock()
	c.ln = ln
	c.mu.Unlock()

	c.wg.Add(1)
	go c.acceptLoop(ln)

	c.logger.Info().Str("addr", ln.Addr().String()).Msg("coordinator listening")
	return nil
}

// Addr returns the bound listener address, useful when Start was given
// port 0.
func (c *Coordinator) Addr() net.Addr {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ln == nil {
		return nil
	}
	return c.ln.Addr()
}

func (c *Coordinator) acceptLoop(ln net.Listener) {
	defer c.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			// Listener closed on Stop.
			return
		}
		mc := c.register(conn)
		if mc == nil {
			conn.Close()
			continue
		}

		// Install the current chain on the joining miner.
		if err := mc.send(wire.Envelope{Type: wire.TypeChain, Chain: c.ChainBlocks()}); err != nil {
			c.logger.Warn().Err(err).Int("miner", mc.id).Msg("failed to send join chain")
		}

		c.wg.Add(1)
		go c.readLoop(mc)
	}
}

// register adds a connection to the miner registry and assigns its id.
// Returns nil if the coordinator is already stopped.
func (c *Coordinator) register(conn net.Conn) *minerConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	mc := &minerConn{id: c.nextID, conn: conn}
	c.nextID++
	c.miners[mc.id] = mc
	c.logger.Info().Int("miner", mc.id).Str("remote", conn.RemoteAddr().String()).Msg("miner connected")
	return mc
}

// readLoop is the per-connection daemon: it decodes frames and
// dispatches them into the round state machine. Any read or decode
// error is connection-local; the miner is removed and the rest of the
// process carries on.
func (c *Coordinator) readLoop(mc *minerConn) {
	defer c.wg.Done()
	defer c.removeMiner(mc.id)

	for {
		env, err := wire.ReadFrame(mc.conn)
		if err != nil {
			return
		}

		switch env.Type {
		case wire.TypeSolution:
			if env.Block == nil {
				c.logger.Warn().Int("miner", mc.id).Msg("solution without a block; dropping connection")
				return
			}
			c.onSolution(mc.id, env.Block)

		case wire.TypeVerify:
			if env.Accept == nil {
				c.logger.Warn().Int("miner", mc.id).Msg("vote without a value; dropping connection")
				return
			}
			c.onVote(mc.id, *env.Accept)

		case wire.TypeChain:
			c.onChain(mc.id, env.Chain)

		case wire.TypeKeys:
			c.onKeys(mc.id, env)

		default:
			c.logger.Warn().Int("miner", mc.id).Str("type", string(env.Type)).Msg("unexpected message; dropping connection")
			return
		}
	}
}

// removeMiner drops a miner from the registry and re-tallies the
// current round, if any: a miner that disconnects mid-round leaves the
// majority denominator.
func (c *Coordinator) removeMiner(id int) {
	c.mu.Lock()
	mc, ok := c.miners[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.miners, id)
	delete(c.round.votes, id)
	delete(c.chainReplies, id)
	c.logger.Info().Int("miner", id).Msg("miner disconnected")

	switch c.round.phase {
	case phaseCollecting:
		if len(c.miners) == 0 {
			c.finishRoundLocked(false)
		}
	case phaseVoting:
		if len(c.miners) == 0 {
			c.finishRoundLocked(false)
		} else {
			c.tallyLocked()
		}
	}
	c.mu.Unlock()

	mc.conn.Close()
}

// broadcastLocked sends env to every connected miner. Send errors are
// logged and left for the reader loop to turn into a disconnect.
func (c *Coordinator) broadcastLocked(env wire.Envelope) {
	for id, mc := range c.miners {
		if err := mc.send(env); err != nil {
			c.logger.Warn().Err(err).Int("miner", id).Str("type", string(env.Type)).Msg("broadcast send failed")
		}
	}
}

// MinerCount returns the number of currently-connected miners.
func (c *Coordinator) MinerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.miners)
}

// MinerIDs returns the ids of currently-connected miners, unordered.
func (c *Coordinator) MinerIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]int, 0, len(c.miners))
	for id := range c.miners {
		ids = append(ids, id)
	}
	return ids
}

// Height returns the coordinator chain's block count.
func (c *Coordinator) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chain.Height()
}

// ChainBlocks returns a copy of the coordinator's chain.
func (c *Coordinator) ChainBlocks() []*block.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chain.Blocks()
}

// BroadcastTransaction forwards a user-built transaction to every
// connected miner, which each validate it into their own pool.
func (c *Coordinator) BroadcastTransaction(t *tx.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrStopped
	}
	c.broadcastLocked(wire.Envelope{Type: wire.TypeTransaction, Transaction: t})
	return nil
}

// RequestKeys asks one miner for its keypair and waits for the reply.
// Educational only: it exists so the user can build transactions
// spending a miner's outputs.
func (c *Coordinator) RequestKeys(id int, timeout time.Duration) (KeyPair, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return KeyPair{}, ErrStopped
	}
	mc, ok := c.miners[id]
	if !ok {
		c.mu.Unlock()
		return KeyPair{}, ErrUnknownMiner
	}
	ch := make(chan KeyPair, 1)
	c.keyWaiters[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.keyWaiters, id)
		c.mu.Unlock()
	}()

	if err := mc.send(wire.Envelope{Type: wire.TypeKeys}); err != nil {
		return KeyPair{}, fmt.Errorf("send keys request: %w", err)
	}

	select {
	case kp := <-ch:
		return kp, nil
	case <-time.After(timeout):
		return KeyPair{}, ErrKeysTimeout
	}
}

func (c *Coordinator) onKeys(id int, env wire.Envelope) {
	pub, err := env.PublicKeyDER()
	if err != nil {
		c.logger.Warn().Err(err).Int("miner", id).Msg("malformed keys reply")
		return
	}
	c.mu.Lock()
	ch, ok := c.keyWaiters[id]
	c.mu.Unlock()
	if !ok {
		return
	}
	select {
	case ch <- KeyPair{PrivatePEM: []byte(env.PrivateKeyPEM), PublicDER: pub}:
	default:
	}
}

// Integrity asks every miner for its chain, waits a collection window
// for counter-proposals, elects the longest valid chain among the
// replies and the coordinator's own, adopts it, and broadcasts the
// winner back to every miner. It returns the winning height.
func (c *Coordinator) Integrity(window time.Duration) (int, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrStopped
	}
	if c.round.phase != phaseIdle {
		c.mu.Unlock()
		return 0, ErrRoundInProgress
	}
	c.chainReplies = make(map[int][]*block.Block)
	local := c.chain.Blocks()
	// Sending the local chain doubles as the request: a miner holding a
	// strictly longer valid chain answers with a counter-proposal, and
	// one holding a shorter chain adopts ours outright.
	c.broadcastLocked(wire.Envelope{Type: wire.TypeChain, Chain: local})
	c.mu.Unlock()

	time.Sleep(window)

	c.mu.Lock()
	candidates := make([][]*block.Block, 0, len(c.chainReplies))
	for _, blocks := range c.chainReplies {
		candidates = append(candidates, blocks)
	}
	c.chainReplies = nil

	winner, ok := chain.LongestValid(candidates, local)
	if !ok {
		c.mu.Unlock()
		return 0, errors.New("coordinator: no valid chain among participants")
	}
	if len(winner) > c.chain.Height() {
		if err := c.chain.Replace(winner); err != nil {
			c.mu.Unlock()
			return 0, fmt.Errorf("adopt winning chain: %w", err)
		}
		c.logger.Info().Int("height", len(winner)).Msg("integrity: adopted longer chain")
	}
	final := c.chain.Blocks()
	c.broadcastLocked(wire.Envelope{Type: wire.TypeChain, Chain: final})
	c.mu.Unlock()

	return len(final), nil
}

// onChain handles a miner-to-coordinator chain message: a reply during
// an integrity sweep, or an unsolicited counter-proposal (e.g. from a
// freshly joined miner holding a longer chain), which is adopted if
// valid and strictly longer.
func (c *Coordinator) onChain(id int, blocks []*block.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chainReplies != nil {
		c.chainReplies[id] = blocks
		return
	}

	if len(blocks) <= c.chain.Height() {
		return
	}
	if err := c.chain.Replace(blocks); err != nil {
		c.logger.Debug().Err(err).Int("miner", id).Msg("rejected counter-proposed chain")
		return
	}
	c.logger.Info().Int("miner", id).Int("height", c.chain.Height()).Msg("adopted counter-proposed chain")
}

// Stop broadcasts close_connection, tears down every socket and the
// listener, and waits for all daemon goroutines to exit. A round in
// flight is released as not-mined.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.broadcastLocked(wire.Envelope{Type: wire.TypeClose})
	if c.round.phase != phaseIdle {
		c.finishRoundLocked(false)
	}
	ln := c.ln
	conns := make([]*minerConn, 0, len(c.miners))
	for _, mc := range c.miners {
		conns = append(conns, mc)
	}
	c.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	for _, mc := range conns {
		mc.conn.Close()
	}
	c.wg.Wait()
	c.logger.Info().Msg("coordinator stopped")
}
