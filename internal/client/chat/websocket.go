package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/dmitrijs2005/bloodlink/internal/logging"
)

const (
	eventUserMessage = "userMessage"
	eventBotResponse = "botResponse"

	channelPath = "socket.io/"
)

var errNotConnected = errors.New("chat channel not connected")

// frame is the wire envelope of every chat message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type userMessage struct {
	Message string `json:"message"`
}

type botResponse struct {
	Reply string `json:"reply"`
}

// WebSocketConnector returns a Connector speaking JSON frames over a
// websocket at {baseURL}/socket.io/. The handshake is bounded by
// handshakeTimeout.
func WebSocketConnector(baseURL string, handshakeTimeout time.Duration, log logging.Logger) (Connector, error) {
	target, err := url.JoinPath(baseURL, channelPath)
	if err != nil {
		return nil, fmt.Errorf("invalid chat URL %q: %w", baseURL, err)
	}

	return func(ctx context.Context, sink func(Event)) Channel {
		ctx, cancel := context.WithCancel(ctx)
		ch := &wsChannel{cancel: cancel, log: log}
		go ch.run(ctx, target, handshakeTimeout, sink)
		return ch
	}, nil
}

type wsChannel struct {
	log    logging.Logger
	cancel context.CancelFunc

	mu        sync.Mutex
	conn      *websocket.Conn
	connected atomic.Bool
}

func (c *wsChannel) run(ctx context.Context, target string, timeout time.Duration, sink func(Event)) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	conn, _, err := websocket.Dial(dialCtx, target, nil)
	cancel()
	if err != nil {
		if ctx.Err() == nil {
			sink(Event{Kind: EventError, Err: err})
		}
		return
	}

	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "client closed")
		return
	}
	c.conn = conn
	c.mu.Unlock()

	c.connected.Store(true)
	sink(Event{Kind: EventConnected})

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			c.connected.Store(false)
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				c.log.Debug(ctx, "chat read failed", "error", err)
			}
			sink(Event{Kind: EventDisconnected, Err: err})
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			c.log.Debug(ctx, "malformed chat frame", "error", err)
			continue
		}
		if f.Event != eventBotResponse {
			continue
		}
		var resp botResponse
		if err := json.Unmarshal(f.Data, &resp); err != nil {
			c.log.Debug(ctx, "malformed bot response", "error", err)
			continue
		}
		sink(Event{Kind: EventMessage, Reply: resp.Reply})
	}
}

func (c *wsChannel) Emit(ctx context.Context, text string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil || !c.connected.Load() {
		return errNotConnected
	}

	data, err := json.Marshal(userMessage{Message: text})
	if err != nil {
		return err
	}
	b, err := json.Marshal(frame{Event: eventUserMessage, Data: data})
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, b)
}

func (c *wsChannel) Connected() bool {
	return c.connected.Load()
}

func (c *wsChannel) Close() error {
	c.cancel()
	c.connected.Store(false)

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "client closed")
}
