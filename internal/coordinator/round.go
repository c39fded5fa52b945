package coordinator

import (
	"github.com/hashvote/hashvote/internal/chain"
	"github.com/hashvote/hashvote/internal/wire"
	"github.com/hashvote/hashvote/pkg/block"
	"github.com/hashvote/hashvote/pkg/types"
)

// roundPhase is the mining round's state. Transitions:
//
//	idle -> collecting          user issues mine
//	collecting -> voting        first solution arrives
//	voting -> idle              a candidate wins (accept) or the
//	                            candidate queue exhausts (reject)
//
// The verdict states are instantaneous: accept/reject broadcast and
// queue handling happen inside one locked transition, so observers only
// ever see the three phases above.
type roundPhase int

const (
	phaseIdle roundPhase = iota
	phaseCollecting
	phaseVoting
)

// candidate is a proposed solution block and the miner that found it.
type candidate struct {
	block    *block.Block
	proposer int
}

// round is the per-round state: the latched target, the FCFS candidate
// queue, the active candidate under vote, and the tally. done releases
// the blocked Mine call when the round returns to idle.
type round struct {
	phase  roundPhase
	target types.Hash
	queue  []candidate
	active candidate
	votes  map[int]bool // miner id -> vote, for the active candidate
	done   chan bool
}

// Mine runs one mining round: it latches a target from the current
// miner count, broadcasts mine to every miner, and blocks until the
// round returns to idle. It reports whether a block was accepted onto
// the chain.
func (c *Coordinator) Mine() (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrStopped
	}
	if c.round.phase != phaseIdle {
		c.mu.Unlock()
		return false, ErrRoundInProgress
	}
	n := len(c.miners)
	if n == 0 {
		c.mu.Unlock()
		return false, ErrNoMiners
	}

	target := chain.TargetForMinerCount(n)
	c.round = round{
		phase:  phaseCollecting,
		target: target,
		done:   make(chan bool, 1),
	}
	done := c.round.done
	c.logger.Info().Int("miners", n).Str("target", target.String()).Msg("mining round started")
	c.broadcastLocked(wire.Envelope{Type: wire.TypeMine, Target: &target})
	c.mu.Unlock()

	mined := <-done
	return mined, nil
}

// onSolution enqueues a candidate in arrival order. The first solution
// of the round moves the machine to voting; later ones wait in the
// queue in case the active candidate is rejected. Solutions outside a
// round (a worker that won the race against the verdict broadcast) are
// dropped.
func (c *Coordinator) onSolution(id int, blk *block.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.round.phase {
	case phaseCollecting:
		c.round.queue = append(c.round.queue, candidate{block: blk, proposer: id})
		c.logger.Info().Int("miner", id).Str("hash", blk.Hash().String()).Msg("first solution; voting begins")
		c.startVotingLocked()
	case phaseVoting:
		c.round.queue = append(c.round.queue, candidate{block: blk, proposer: id})
		c.logger.Debug().Int("miner", id).Msg("solution enqueued behind active candidate")
	default:
		c.logger.Debug().Int("miner", id).Msg("stale solution outside a round; dropped")
	}
}

// onVote records one miner's verify reply for the active candidate.
// Duplicate votes and votes from the proposer (whose yes is implicit)
// are ignored.
func (c *Coordinator) onVote(id int, accept bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.round.phase != phaseVoting {
		return
	}
	if _, connected := c.miners[id]; !connected {
		return
	}
	if _, voted := c.round.votes[id]; voted {
		return
	}
	c.round.votes[id] = accept
	c.tallyLocked()
}

// startVotingLocked dequeues the next candidate, counts the proposer's
// implicit yes, broadcasts verify to everyone else, and tallies
// immediately (with one connected miner the proposer's own vote already
// decides).
func (c *Coordinator) startVotingLocked() {
	c.round.phase = phaseVoting
	c.round.active = c.round.queue[0]
	c.round.queue = c.round.queue[1:]
	c.round.votes = make(map[int]bool)

	proposer := c.round.active.proposer
	if _, connected := c.miners[proposer]; connected {
		c.round.votes[proposer] = true
	}

	env := wire.Envelope{Type: wire.TypeVerify, Block: c.round.active.block}
	for id, mc := range c.miners {
		if id == proposer {
			continue
		}
		if err := mc.send(env); err != nil {
			c.logger.Warn().Err(err).Int("miner", id).Msg("verify send failed")
		}
	}

	c.tallyLocked()
}

// tallyLocked evaluates the active candidate's tally against the
// currently-connected miner count and transitions when decided:
// a strict majority of yes votes accepts immediately; enough no votes
// to make a strict majority impossible rejects immediately; everyone
// having voted without a strict majority also rejects.
func (c *Coordinator) tallyLocked() {
	if c.round.phase != phaseVoting {
		return
	}

	n := len(c.miners)
	if n == 0 {
		c.finishRoundLocked(false)
		return
	}

	var yes, no int
	for _, v := range c.round.votes {
		if v {
			yes++
		} else {
			no++
		}
	}

	switch {
	case yes > n/2:
		c.acceptLocked()
	case no >= n-n/2:
		c.rejectActiveLocked()
	case yes+no >= n:
		c.rejectActiveLocked()
	}
}

// acceptLocked broadcasts the accepting verdict, appends the winning
// block to the coordinator's chain, drops any still-queued candidates,
// and returns the round to idle.
func (c *Coordinator) acceptLocked() {
	blk := c.round.active.block
	c.broadcastLocked(wire.Envelope{Type: wire.TypeVerdict, Accept: wire.BoolPtr(true), Block: blk})
	if err := c.chain.Append(blk); err != nil {
		// The majority accepted a block the coordinator's own chain
		// rejects; keep serving but say so loudly.
		c.logger.Error().Err(err).Str("hash", blk.Hash().String()).Msg("accepted block failed to append locally")
	} else {
		c.logger.Info().Int("height", c.chain.Height()).Str("hash", blk.Hash().String()).Msg("block accepted")
	}
	c.finishRoundLocked(true)
}

// rejectActiveLocked broadcasts the rejecting verdict for the active
// candidate, then either re-enters voting on the next queued candidate
// or, with the queue empty, ends the round with no block mined.
// startVotingLocked tallies the fresh candidate, which can recurse back
// here; each pass consumes one queue entry, so the recursion is bounded
// by the queue length.
func (c *Coordinator) rejectActiveLocked() {
	blk := c.round.active.block
	c.broadcastLocked(wire.Envelope{Type: wire.TypeVerdict, Accept: wire.BoolPtr(false), Block: blk})
	c.logger.Info().Str("hash", blk.Hash().String()).Int("queued", len(c.round.queue)).Msg("candidate rejected")

	if len(c.round.queue) > 0 {
		c.startVotingLocked()
		return
	}
	c.finishRoundLocked(false)
}

// finishRoundLocked resets the round to idle and releases the blocked
// Mine call, if any.
func (c *Coordinator) finishRoundLocked(mined bool) {
	done := c.round.done
	c.round = round{phase: phaseIdle}
	if done != nil {
		select {
		case done <- mined:
		default:
		}
	}
	if !mined {
		c.logger.Info().Msg("round over: no block mined")
	}
}
