package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanwe2/battleships/internal/apperrors"
	"github.com/ivanwe2/battleships/internal/game/board"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MsgJoinGame, JoinGamePayload{GameID: "alice-bob", Player: "alice"})
	require.NoError(t, err)
	assert.Equal(t, MsgJoinGame, msg.Type)
	assert.NotEmpty(t, msg.Payload)

	_, err = NewMessage(MsgJoinGame, func() {})
	assert.Error(t, err)
}

func TestEncode_Flat(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(MsgAttack, AttackPayload{
		GameID:   "alice-bob",
		Attacker: "alice",
		Defender: "bob",
		Position: board.Pos(3, 7),
	})
	data, err := msg.Encode()
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "ATTACK",
		"gameId": "alice-bob",
		"attacker": "alice",
		"defender": "bob",
		"position": {"row": 3, "col": 7}
	}`, string(data))
}

func TestEncode_NoPayload(t *testing.T) {
	t.Parallel()

	data, err := MustNewMessage(MsgGameStart, nil).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"GAME_START"}`, string(data))
}

func TestAttack_RoundTrip(t *testing.T) {
	t.Parallel()

	original := AttackPayload{
		GameID:   "alice-bob",
		Attacker: "alice",
		Defender: "bob",
		Position: board.Pos(9, 0),
	}
	data, err := MustNewMessage(MsgAttack, original).Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, MsgAttack, decoded.Type)

	payload, err := ParsePayload[AttackPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, original, *payload)
}

func TestDecode_ReEncodeKeepsSingleType(t *testing.T) {
	t.Parallel()

	in := []byte(`{"type":"GAME_OVER","gameId":"g","winner":"bob"}`)
	msg, err := Decode(in)
	require.NoError(t, err)

	out, err := msg.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", `hello`},
		{"array", `[1,2]`},
		{"null", `null`},
		{"missing type", `{"gameId":"g"}`},
		{"numeric type", `{"type":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
		})
	}
}

func TestParsePayload_WrongShape(t *testing.T) {
	t.Parallel()

	msg, err := Decode([]byte(`{"type":"ATTACK","position":"A5"}`))
	require.NoError(t, err)

	_, err = ParsePayload[AttackPayload](msg)
	assert.ErrorIs(t, err, apperrors.ErrMalformedMessage)
}

func TestAttackResult_NullableShipDestroyed(t *testing.T) {
	t.Parallel()

	data, err := MustNewMessage(MsgAttackResult, AttackResultPayload{
		GameID: "g", Attacker: "a", Defender: "b", Position: board.Pos(0, 0), Hit: true,
	}).Encode()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	v, ok := raw["shipDestroyed"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.NotContains(t, raw, "cells")

	msg, err := Decode([]byte(`{"type":"ATTACK_RESULT","hit":true,"shipDestroyed":"carrier","position":{"row":0,"col":4}}`))
	require.NoError(t, err)
	res, err := ParsePayload[AttackResultPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "carrier", StrVal(res.ShipDestroyed))
}

func TestMessage_JSONMarshaler(t *testing.T) {
	t.Parallel()

	msg := MustNewMessage(MsgInvite, InvitePayload{From: "alice", To: "bob"})
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var back Message
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, MsgInvite, back.Type)

	p, err := ParsePayload[InvitePayload](&back)
	require.NoError(t, err)
	assert.Equal(t, "bob", p.To)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(ErrCodePeerOffline)
	assert.Equal(t, MsgError, msg.Type)

	p, err := ParsePayload[ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, ErrCodePeerOffline, p.Code)
	assert.Equal(t, ErrorMessages[ErrCodePeerOffline], p.Message)

	p, err = ParsePayload[ErrorPayload](NewErrorMessage(4242))
	require.NoError(t, err)
	assert.Equal(t, ErrorMessages[ErrCodeUnknown], p.Message)
}

func TestStrPtr(t *testing.T) {
	t.Parallel()

	assert.Nil(t, StrPtr(""))
	assert.Equal(t, "x", *StrPtr("x"))
	assert.Equal(t, "", StrVal(nil))
}
