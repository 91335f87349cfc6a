package client

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/ivanwe2/battleships/internal/logger"
)

// readPump reads frames from the relay and dispatches them in arrival order.
func (c *Client) readPump(l *link) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		l.close()
		c.linkLost(l)
	}()

	_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		_ = l.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.LogWarn("relay connection lost: %v", err)
			}
			return
		}
		// errors are logged by the dispatcher
		_ = c.dispatcher.DispatchRaw(data)
	}
}

// writePump drains the link's send queue and keeps the connection alive.
func (c *Client) writePump(l *link) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		l.close()
	}()

	for {
		select {
		case message := <-l.send:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.LogWarn("write to relay failed: %v", err)
				return
			}

		case <-ticker.C:
			_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-l.done:
			return
		}
	}
}
