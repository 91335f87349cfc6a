//go:build !production

package session

import (
	"github.com/stretchr/testify/mock"

	"github.com/ivanwe2/battleships/internal/network/protocol"
)

// MockSender is a Sender mock.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(msg *protocol.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

// Sent returns the messages passed to Send, in order.
func (m *MockSender) Sent() []*protocol.Message {
	var out []*protocol.Message
	for _, c := range m.Calls {
		if c.Method == "Send" {
			out = append(out, c.Arguments.Get(0).(*protocol.Message))
		}
	}
	return out
}

// SentTypes returns the types of the messages passed to Send.
func (m *MockSender) SentTypes() []protocol.MessageType {
	var out []protocol.MessageType
	for _, msg := range m.Sent() {
		out = append(out, msg.Type)
	}
	return out
}

// LastSent returns the last message of type t, or nil.
func (m *MockSender) LastSent(t protocol.MessageType) *protocol.Message {
	sent := m.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].Type == t {
			return sent[i]
		}
	}
	return nil
}
