package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanwe2/battleships/internal/apperrors"
)

func TestDispatcher_Routes(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	var got []MessageType
	d.Register(MsgAttack, func(m *Message) { got = append(got, m.Type) })
	d.RegisterAll([]MessageType{MsgShipsPlaced, MsgShipPlacement}, func(m *Message) {
		got = append(got, MsgShipsPlaced)
	})

	require.NoError(t, d.DispatchRaw([]byte(`{"type":"ATTACK","position":{"row":1,"col":1}}`)))
	require.NoError(t, d.DispatchRaw([]byte(`{"type":"SHIP_PLACEMENT","ships":[]}`)))
	assert.Equal(t, []MessageType{MsgAttack, MsgShipsPlaced}, got)
	assert.True(t, d.Handles(MsgShipPlacement))
}

func TestDispatcher_DropsUnknownAndMalformed(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	called := false
	d.Register(MsgAttack, func(*Message) { called = true })

	err := d.DispatchRaw([]byte(`{"type":"TELEPORT"}`))
	assert.ErrorIs(t, err, apperrors.ErrUnknownMessage)

	err = d.DispatchRaw([]byte(`{"type":`))
	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
	assert.False(t, called)

	d.Unregister(MsgAttack)
	assert.ErrorIs(t, d.Dispatch(MustNewMessage(MsgAttack, nil)), apperrors.ErrUnknownMessage)
}

func TestDispatcher_ReplaceHandler(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	n := 0
	d.Register(MsgGameOver, func(*Message) { n = 1 })
	d.Register(MsgGameOver, func(*Message) { n = 2 })

	require.NoError(t, d.Dispatch(MustNewMessage(MsgGameOver, GameOverPayload{Winner: "a"})))
	assert.Equal(t, 2, n)
}
