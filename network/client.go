package network

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"

	"github.com/mothlight/swarmgate-mp/shared/messages"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

// stagedSnapshot pairs a snapshot with its local receive time so the apply
// pass can feed the latency estimator.
type stagedSnapshot struct {
	snap       messages.Snapshot
	receivedAt time.Time
}

// Client manages the guest's WebSocket connection to the host.
// All shared fields are protected by mu (router callbacks run on necs
// goroutines). Snapshots are staged into a size-1 channel, latest wins, so a
// frame never observes more than one and never partially applies one.
type Client struct {
	mu sync.RWMutex

	state     ClientState
	lastError error
	slot      int
	tickRate  int
	conn      *websocket.Conn

	snapshotCh chan stagedSnapshot
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan stagedSnapshot, 1),
	}
}

// Connect dials the host in a background goroutine and initiates the join
// handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to host")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		payload, err := router.Serialize(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to serialize join request: %w", err))
			return
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn != nil {
			if err := conn.Write(context.Background(), websocket.MessageBinary, payload); err != nil {
				c.setError(fmt.Errorf("failed to send join request: %w", err))
			}
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] join accepted: slot=%d tickRate=%d", msg.Slot, msg.TickRate)
		c.mu.Lock()
		c.slot = msg.Slot
		c.tickRate = msg.TickRate
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snap messages.Snapshot) {
		staged := stagedSnapshot{snap: snap, receivedAt: time.Now()}
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- staged
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Slot returns the player slot the host assigned at join.
func (c *Client) Slot() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slot
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// latestSnapshot returns the most recently staged snapshot, or ok=false.
// Non-blocking; consuming it empties the slot until the next arrival.
func (c *Client) latestSnapshot() (stagedSnapshot, bool) {
	select {
	case staged := <-c.snapshotCh:
		return staged, true
	default:
		return stagedSnapshot{}, false
	}
}

// SendFire sends a fire request to the host. Fire-and-forget: the caller has
// already materialized the optimistic copy and does not wait on delivery.
func (c *Client) SendFire(req messages.FireRequest) error {
	return c.sendMessage(req)
}

func (c *Client) sendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}
