package client

import (
	"github.com/ivanwe2/battleships/internal/game/session"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

// Bind wires a game session to the client: inbound game messages go to
// s.HandleMessage, status changes become session status events, a
// re-established link triggers s.Resync and exhausted reconnects reset the
// session to the lobby. Call Bind before Connect.
func (c *Client) Bind(s *session.Session) {
	c.dispatcher.RegisterAll(session.InboundTypes(), func(msg *protocol.Message) {
		// the session logs and drops what it cannot apply
		_ = s.HandleMessage(msg)
	})

	c.OnStatus = func(st Status) {
		s.ConnectionStatus(string(st))
	}
	c.OnReconnect = func() {
		_ = s.Resync()
	}
	c.OnDisconnect = s.Disconnected
}
