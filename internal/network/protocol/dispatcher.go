package protocol

import (
	"fmt"
	"sync"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/logger"
)

// HandlerFunc handles one inbound message.
type HandlerFunc func(msg *Message)

// Dispatcher routes inbound messages to the handler registered for their
// type. One handler per type; registering again replaces it.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[MessageType]HandlerFunc
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[MessageType]HandlerFunc)}
}

// Register sets the handler for t.
func (d *Dispatcher) Register(t MessageType, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = h
}

// RegisterAll sets h for every type in ts.
func (d *Dispatcher) RegisterAll(ts []MessageType, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range ts {
		d.handlers[t] = h
	}
}

// Unregister removes the handler for t.
func (d *Dispatcher) Unregister(t MessageType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, t)
}

// Handles reports whether a handler is registered for t.
func (d *Dispatcher) Handles(t MessageType) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[t]
	return ok
}

// Dispatch runs the handler for msg.Type. Messages without a handler are
// logged and dropped with ErrUnknownMessage.
func (d *Dispatcher) Dispatch(msg *Message) error {
	d.mu.RLock()
	h, ok := d.handlers[msg.Type]
	d.mu.RUnlock()

	if !ok {
		logger.LogWarn("dropping message with unknown type %q (%d bytes)", msg.Type, len(msg.Payload))
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownMessage, msg.Type)
	}
	h(msg)
	return nil
}

// DispatchRaw decodes a wire frame and dispatches it. Malformed frames are
// logged and dropped.
func (d *Dispatcher) DispatchRaw(data []byte) error {
	msg, err := Decode(data)
	if err != nil {
		logger.LogError("dropping malformed frame: %v", err)
		return err
	}
	return d.Dispatch(msg)
}
