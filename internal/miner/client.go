package miner

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/hashvote/hashvote/internal/log"
	"github.com/hashvote/hashvote/internal/wire"
	"github.com/hashvote/hashvote/pkg/crypto"
)

// Client connects a Miner to the coordinator over one TCP stream. It
// owns the socket: the read loop runs on the caller's goroutine (Run),
// and every outgoing frame — vote replies from the read loop and
// solutions from the mining worker alike — is serialized through a
// single write mutex so frames never interleave.
type Client struct {
	conn net.Conn
	wmu  sync.Mutex
	m    *Miner
}

// Dial connects to the coordinator at addr and wires a fresh Miner to
// the connection. The returned client's read loop is not started;
// call Run.
func Dial(addr string, key *crypto.PrivateKey, verifier Verifier) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial coordinator: %w", err)
	}
	c := &Client{conn: conn}
	c.m = New(key, verifier, c)
	return c, nil
}

// Miner returns the node state driven by this connection.
func (c *Client) Miner() *Miner {
	return c.m
}

// Send implements Sender.
func (c *Client) Send(env wire.Envelope) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return wire.WriteFrame(c.conn, env)
}

// Close tears the connection down, which also unblocks Run.
func (c *Client) Close() error {
	c.m.HandleClose()
	return c.conn.Close()
}

// Run reads frames until the coordinator says close_connection (nil
// return), the peer goes away (nil), or a frame is malformed (error;
// the connection is closed either way). Messages on the single TCP
// stream arrive in order, which the round protocol relies on.
func (c *Client) Run() error {
	defer c.conn.Close()

	for {
		env, err := wire.ReadFrame(c.conn)
		if err != nil {
			c.m.HandleClose()
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}

		if err := c.dispatch(env); err != nil {
			c.m.HandleClose()
			return err
		}
		if env.Type == wire.TypeClose {
			return nil
		}
	}
}

// dispatch routes one envelope to the matching handler. An envelope
// missing its payload counts as malformed and kills the connection.
func (c *Client) dispatch(env wire.Envelope) error {
	switch env.Type {
	case wire.TypeTransaction:
		if env.Transaction == nil {
			return errMissingPayload(env.Type)
		}
		c.m.HandleTransaction(env.Transaction)

	case wire.TypeMine:
		if env.Target == nil {
			return errMissingPayload(env.Type)
		}
		c.m.HandleMine(*env.Target)

	case wire.TypeVerify:
		if env.Block == nil {
			return errMissingPayload(env.Type)
		}
		accept := c.m.HandleVerify(env.Block)
		return c.Send(wire.Envelope{Type: wire.TypeVerify, Accept: wire.BoolPtr(accept)})

	case wire.TypeVerdict:
		if env.Accept == nil || env.Block == nil {
			return errMissingPayload(env.Type)
		}
		c.m.HandleVerdict(*env.Accept, env.Block)

	case wire.TypeChain:
		counter, replaced := c.m.HandleChain(env.Chain)
		if replaced {
			log.Miner.Info().Int("height", c.m.Chain.Height()).Msg("adopted longer chain from coordinator")
		}
		if counter != nil {
			return c.Send(wire.Envelope{Type: wire.TypeChain, Chain: counter})
		}

	case wire.TypeKeys:
		priv, pub := c.m.HandleKeys()
		return c.Send(wire.NewKeysReply(priv, pub))

	case wire.TypeClose:
		c.m.HandleClose()

	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
	return nil
}

func errMissingPayload(t wire.Type) error {
	return fmt.Errorf("message %q missing payload", t)
}
