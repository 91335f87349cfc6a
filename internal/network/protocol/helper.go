package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/ivanwe2/battleships/internal/apperrors"
)

// NewMessage creates a message. payload must marshal to a JSON object or be
// nil.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return &Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// MustNewMessage is NewMessage that panics on error.
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode flattens the message into one JSON object with a "type" field.
func (m *Message) Encode() ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if len(m.Payload) > 0 && string(m.Payload) != "null" {
		if err := json.Unmarshal(m.Payload, &fields); err != nil {
			return nil, fmt.Errorf("payload of %s is not an object: %w", m.Type, err)
		}
	}
	typ, err := json.Marshal(m.Type)
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}

// MarshalJSON implements json.Marshaler with the flat wire layout.
func (m *Message) MarshalJSON() ([]byte, error) {
	return m.Encode()
}

// UnmarshalJSON implements json.Unmarshaler with the flat wire layout.
func (m *Message) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// Decode parses a wire frame. The whole object is kept as the payload so
// ParsePayload sees every field.
func Decode(data []byte) (*Message, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedMessage, err)
	}
	if head.Type == "" {
		return nil, fmt.Errorf("%w: missing type", apperrors.ErrMalformedMessage)
	}
	payload := make(json.RawMessage, len(data))
	copy(payload, data)
	return &Message{Type: head.Type, Payload: payload}, nil
}

// ParsePayload decodes the message payload into T.
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrMalformedMessage, msg.Type, err)
	}
	return &payload, nil
}

// NewErrorMessage creates an ERROR frame for a relay error code.
func NewErrorMessage(code int) *Message {
	text, ok := ErrorMessages[code]
	if !ok {
		text = ErrorMessages[ErrCodeUnknown]
	}
	return NewErrorMessageWithText(code, text)
}

// NewErrorMessageWithText creates an ERROR frame with custom text.
func NewErrorMessageWithText(code int, text string) *Message {
	msg, _ := NewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}
