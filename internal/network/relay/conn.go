package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBufferSize = 256
)

// Conn is one connected player.
type Conn struct {
	ID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu     sync.RWMutex
	name   string
	gameID string
	closed bool
}

func newConn(h *Hub, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   uuid.New().String(),
		hub:  h,
		conn: ws,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Name returns the registered player name, "" before REGISTER or JOIN_GAME.
func (c *Conn) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Conn) setName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// GameID returns the game the player joined last.
func (c *Conn) GameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

func (c *Conn) setGame(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

// ReadPump reads frames and hands them to the hub until the socket closes.
func (c *Conn) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.hub.unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.LogWarn("read from %s failed: %v", c.ID, err)
			}
			return
		}

		if !c.hub.limiter.Allow(c.ID) {
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimited))
			continue
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			logger.LogWarn("bad frame from %s: %v", c.ID, err)
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}
		c.hub.Handle(c, msg)
	}
}

// WritePump drains the send queue and pings the peer.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

// SendMessage queues msg. A peer that cannot keep up is disconnected.
func (c *Conn) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return
	}

	data, err := msg.Encode()
	if err != nil {
		logger.LogError("encode %s: %v", msg.Type, err)
		return
	}

	select {
	case c.send <- data:
	default:
		logger.LogWarn("send buffer of %s full, disconnecting", c.ID)
		c.Close()
	}
}

// Close ends the connection. Safe to call more than once.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}
