package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jmgilman/overseer/internal/model"
)

// Client defaults.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultEventBuffer      = 256
)

// ErrClientClosed is returned by calls made on, or interrupted by, a closed
// connection.
var ErrClientClosed = errors.New("control connection closed")

// RemoteError is a request the server answered with success=false.
type RemoteError struct {
	Type    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Client is a websocket client of the control protocol. It is safe for
// concurrent use; responses are matched to calls by requestId.
type Client struct {
	conn   *websocket.Conn
	events chan model.AgentEvent
	done   chan struct{}

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Envelope
	err     error
}

// Dial connects to the control server at addr. addr may be a host:port, an
// http(s) URL or a ws(s) URL; the /ws path is implied.
func Dial(ctx context.Context, addr string) (*Client, error) {
	wsURL, err := endpoint(addr)
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	c := &Client{
		conn:    conn,
		events:  make(chan model.AgentEvent, DefaultEventBuffer),
		done:    make(chan struct{}),
		pending: make(map[string]chan Envelope),
	}
	go c.readLoop()
	return c, nil
}

// endpoint converts addr to the websocket URL of the control endpoint.
func endpoint(addr string) (string, error) {
	if !strings.Contains(addr, "://") {
		addr = "ws://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("address %q has no host", addr)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// Call sends a request and decodes the response data into out, which may
// be nil. A server-side failure is returned as *RemoteError.
func (c *Client) Call(ctx context.Context, typ string, payload, out any) error {
	req := Request{Type: typ, RequestID: uuid.NewString()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		req.Payload = raw
	}

	ch := make(chan Envelope, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.pending[req.RequestID] = ch
	c.mu.Unlock()
	defer c.forget(req.RequestID)

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}

	select {
	case env := <-ch:
		if !env.Success {
			return &RemoteError{Type: typ, Message: env.Error}
		}
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", typ, err)
		}
		return nil
	case <-c.done:
		return c.closedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe starts the agent event stream. With replay the server first
// sends its retained tail. Events are read from Events.
func (c *Client) Subscribe(ctx context.Context, replay bool) error {
	return c.Call(ctx, TypeGetAgentStream, StreamPayload{Action: StreamSubscribe, Replay: replay}, nil)
}

// Unsubscribe stops the agent event stream.
func (c *Client) Unsubscribe(ctx context.Context) error {
	return c.Call(ctx, TypeGetAgentStream, StreamPayload{Action: StreamUnsubscribe}, nil)
}

// Events returns pushed agent events. The channel is closed when the
// connection ends. Events are dropped when the consumer falls behind.
func (c *Client) Events() <-chan model.AgentEvent {
	return c.events
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection and waits for the reader to stop.
func (c *Client) Close() error {
	c.writeMu.Lock()
	//nolint:errcheck // peer may already be gone
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}

func (c *Client) readLoop() {
	defer close(c.events)
	defer close(c.done)

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			c.fail(err)
			return
		}

		switch env.Type {
		case FrameAgentEvent:
			var ev model.AgentEvent
			if err := json.Unmarshal(env.Data, &ev); err != nil {
				continue
			}
			select {
			case c.events <- ev:
			default:
			}
		default:
			c.mu.Lock()
			ch, ok := c.pending[env.RequestID]
			c.mu.Unlock()
			if ok {
				ch <- env
			}
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, websocket.ErrCloseSent) {
		c.err = ErrClientClosed
		return
	}
	c.err = fmt.Errorf("%w: %v", ErrClientClosed, err)
}

func (c *Client) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		return ErrClientClosed
	}
	return c.err
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}
