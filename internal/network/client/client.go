// Package client is the connection manager: it owns the websocket to the
// relay, feeds inbound messages to a protocol.Dispatcher and reconnects with
// exponential backoff when the link drops.
package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/config"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize   = 256
	handshakeTimeout = 10 * time.Second
)

// Status is the state of the relay connection.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
	StatusDisconnected Status = "disconnected"
)

// Options configure a Client.
type Options struct {
	URL          string
	MaxAttempts  int
	BaseInterval time.Duration
	MaxInterval  time.Duration
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		URL:          cfg.Client.RelayURL,
		MaxAttempts:  cfg.Reconnect.MaxAttempts,
		BaseInterval: cfg.Reconnect.BaseIntervalDuration(),
		MaxInterval:  cfg.Reconnect.MaxIntervalDuration(),
	}
}

// link is one websocket connection and its outbound queue.
type link struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newLink(conn *websocket.Conn) *link {
	return &link{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (l *link) close() {
	l.closeOnce.Do(func() { l.teardown(false) })
}

// shutdown sends a close frame before closing, so the relay sees a normal
// closure instead of a dropped socket.
func (l *link) shutdown() {
	l.closeOnce.Do(func() { l.teardown(true) })
}

func (l *link) teardown(graceful bool) {
	close(l.done)
	if graceful {
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	}
	_ = l.conn.Close()
}

// Client WebSocket client for the relay.
type Client struct {
	opts       Options
	dispatcher *protocol.Dispatcher
	dialer     websocket.Dialer

	// Callbacks. Set them before Connect.
	OnStatus     func(Status) // every status change
	OnReconnect  func()       // link re-established after a drop
	OnDisconnect func()       // reconnect attempts exhausted

	mu     sync.RWMutex
	link   *link
	status Status
	closed bool
	quit   chan struct{}

	reconnecting atomic.Bool
}

// New creates a client. Inbound messages are routed through d.
func New(opts Options, d *protocol.Dispatcher) *Client {
	def := config.Default().Reconnect
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = def.MaxAttempts
	}
	if opts.BaseInterval <= 0 {
		opts.BaseInterval = def.BaseIntervalDuration()
	}
	if opts.MaxInterval < opts.BaseInterval {
		opts.MaxInterval = opts.BaseInterval
	}
	if d == nil {
		d = protocol.NewDispatcher()
	}
	return &Client{
		opts:       opts,
		dispatcher: d,
		dialer:     websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		status:     StatusDisconnected,
		quit:       make(chan struct{}),
	}
}

// Dispatcher returns the dispatcher inbound messages are routed through.
func (c *Client) Dispatcher() *protocol.Dispatcher {
	return c.dispatcher
}

// Connect dials the relay. A failed first dial is returned to the caller and
// does not start the reconnect loop.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return apperrors.ErrNotConnected
	}

	c.setStatus(StatusConnecting)
	if err := c.dial(ctx); err != nil {
		c.setStatus(StatusDisconnected)
		return err
	}
	c.setStatus(StatusConnected)
	return nil
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		return err
	}

	l := newLink(conn)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return apperrors.ErrNotConnected
	}
	c.link = l
	c.mu.Unlock()

	go c.readPump(l)
	go c.writePump(l)
	return nil
}

// Send queues msg for the relay. It never blocks: it fails with
// ErrNotConnected while there is no link and ErrSendBufferFull when the queue
// is full.
func (c *Client) Send(msg *protocol.Message) error {
	c.mu.RLock()
	l := c.link
	closed := c.closed
	c.mu.RUnlock()
	if closed || l == nil {
		return apperrors.ErrNotConnected
	}

	data, err := msg.Encode()
	if err != nil {
		return err
	}

	select {
	case <-l.done:
		return apperrors.ErrNotConnected
	default:
	}
	select {
	case l.send <- data:
		return nil
	default:
		logger.LogWarn("send buffer full, dropped %s", msg.Type)
		return apperrors.ErrSendBufferFull
	}
}

// Close shuts the client down for good.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.quit)
	l := c.link
	c.link = nil
	c.mu.Unlock()

	if l != nil {
		l.shutdown()
	}
	c.setStatus(StatusDisconnected)
}

// Status returns the current connection status.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// IsConnected reports whether a link to the relay is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.link != nil
}

// IsReconnecting reports whether the reconnect loop is running.
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	if c.status == s {
		c.mu.Unlock()
		return
	}
	c.status = s
	cb := c.OnStatus
	c.mu.Unlock()

	logger.LogInfo("relay connection %s", s)
	if cb != nil {
		cb(s)
	}
}

// linkLost is called once per link when its read loop ends.
func (c *Client) linkLost(l *link) {
	c.mu.Lock()
	if c.closed || c.link != l {
		c.mu.Unlock()
		return
	}
	c.link = nil
	c.mu.Unlock()

	go c.reconnect()
}
