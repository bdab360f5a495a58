// Package wsledger implements the ledger client over the CasinoCoin
// websocket API. Requests are correlated to responses by id, stream messages
// are decoded into typed events at this boundary.
package wsledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/casinocoin/cscwalletd/internal/core/ports"
)

const (
	requestTimeout = 15 * time.Second
	eventsBuffer   = 64
)

type client struct {
	endpoint string

	conn     *websocket.Conn
	writeMtx sync.Mutex

	pendingMtx sync.Mutex
	nextID     uint64
	pending    map[uint64]chan json.RawMessage

	events chan ports.RemoteEvent
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewClient returns a disconnected client for the given websocket endpoint.
func NewClient(endpoint string) ports.LedgerClient {
	return &client{
		endpoint: endpoint,
		pending:  make(map[uint64]chan json.RawMessage),
		events:   make(chan ports.RemoteEvent, eventsBuffer),
	}
}

func (c *client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}
	c.conn = conn
	c.quit = make(chan struct{})
	c.wg.Add(1)
	go c.readLoop()

	if _, err := c.request(ctx, map[string]interface{}{
		"command": "subscribe",
		"streams": []string{"ledger", "transactions"},
	}); err != nil {
		c.Disconnect()
		return err
	}
	log.Debugf("connected to ledger server at %s", c.endpoint)
	return nil
}

func (c *client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	close(c.quit)
	err := c.conn.Close()
	c.wg.Wait()
	c.conn = nil
	return err
}

func (c *client) Events() <-chan ports.RemoteEvent {
	return c.events
}

// request sends one command and blocks until its response or until the
// context expires.
func (c *client) request(
	ctx context.Context, payload map[string]interface{},
) (json.RawMessage, error) {
	if c.conn == nil {
		return nil, ports.ErrNotConnected
	}

	c.pendingMtx.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan json.RawMessage, 1)
	c.pending[id] = ch
	c.pendingMtx.Unlock()

	defer func() {
		c.pendingMtx.Lock()
		delete(c.pending, id)
		c.pendingMtx.Unlock()
	}()

	payload["id"] = id
	c.writeMtx.Lock()
	err := c.conn.WriteJSON(payload)
	c.writeMtx.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrTransient, err)
	}

	timeout := time.NewTimer(requestTimeout)
	defer timeout.Stop()
	select {
	case raw := <-ch:
		return raw, nil
	case <-timeout.C:
		return nil, fmt.Errorf("%w: request %d timed out", ports.ErrTransient, id)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ports.ErrTransient, ctx.Err())
	case <-c.quit:
		return nil, ports.ErrNotConnected
	}
}

type envelope struct {
	ID           uint64          `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

func (c *client) readLoop() {
	defer c.wg.Done()
	defer close(c.events)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.quit:
			default:
				log.WithError(err).Warn("ledger stream read failed")
				c.events <- ports.DisconnectedEvent{Code: websocket.CloseAbnormalClosure}
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.WithError(err).Warn("discarding undecodable ledger message")
			continue
		}

		if env.Type == "response" {
			c.dispatchResponse(env, raw)
			continue
		}

		if event := decodeStreamMessage(env.Type, raw); event != nil {
			select {
			case c.events <- event:
			default:
				log.Warn("event buffer full, dropping ledger event")
			}
		}
	}
}

func (c *client) dispatchResponse(env envelope, raw json.RawMessage) {
	c.pendingMtx.Lock()
	ch, ok := c.pending[env.ID]
	c.pendingMtx.Unlock()
	if !ok {
		log.Tracef("response for unknown request id %d", env.ID)
		return
	}
	ch <- raw
}
