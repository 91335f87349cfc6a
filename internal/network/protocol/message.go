package protocol

import (
	"encoding/json"

	"github.com/ivanwe2/battleships/internal/game/board"
)

// Message is one relay frame. On the wire it is a flat JSON object whose
// "type" field selects the payload shape; Payload holds the remaining fields.
type Message struct {
	Type    MessageType
	Payload json.RawMessage
}

// MessageType selects the payload shape.
type MessageType string

// Session messages
const (
	MsgJoinGame      MessageType = "JOIN_GAME"
	MsgLeaveGame     MessageType = "LEAVE_GAME"
	MsgShipsPlaced   MessageType = "SHIPS_PLACED"
	MsgShipPlacement MessageType = "SHIP_PLACEMENT" // legacy alias of SHIPS_PLACED
	MsgGameReady     MessageType = "GAME_READY"
	MsgGameStart     MessageType = "GAME_START"
	MsgGameOver      MessageType = "GAME_OVER"
)

// Battle messages
const (
	MsgAttack        MessageType = "ATTACK"
	MsgAttackResult  MessageType = "ATTACK_RESULT"
	MsgSpecialAttack MessageType = "SPECIAL_ATTACK"
)

// Lobby handshake and relay notices
const (
	MsgRegister        MessageType = "REGISTER"
	MsgRegisterSuccess MessageType = "REGISTER_SUCCESS"
	MsgRegisterError   MessageType = "REGISTER_ERROR"
	MsgLogout          MessageType = "LOGOUT"
	MsgSetPlayers      MessageType = "SET_PLAYERS"
	MsgInvite          MessageType = "INVITE"
	MsgAcceptInvite    MessageType = "ACCEPT_INVITE"
	MsgError           MessageType = "ERROR"
)

// RegisterPayload claims a player name on the relay. Also used by
// REGISTER_SUCCESS and LOGOUT.
type RegisterPayload struct {
	Username string `json:"username"`
}

// PlayersPayload lists the registered players.
type PlayersPayload struct {
	Players []string `json:"players"`
}

// JoinGamePayload announces entry to a game.
type JoinGamePayload struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

// LeaveGamePayload announces departure.
type LeaveGamePayload struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

// ShipInfo describes a placed ship without revealing where it is.
type ShipInfo struct {
	Type string `json:"type"`
	Size int    `json:"size"`
}

// ShipsPlacedPayload signals that the sender finished placing its fleet.
type ShipsPlacedPayload struct {
	GameID string     `json:"gameId"`
	Player string     `json:"player"`
	Ships  []ShipInfo `json:"ships"`
}

// GameReadyPayload is sent by the relay once both players joined.
type GameReadyPayload struct {
	GameID      string `json:"gameId"`
	FirstPlayer string `json:"firstPlayer"`
	Opponent    string `json:"opponent,omitempty"`
}

// GameStartPayload is sent by the relay once both fleets are placed.
type GameStartPayload struct {
	GameID      string `json:"gameId"`
	FirstPlayer string `json:"firstPlayer"`
}

// AttackPayload is a single-cell shot. The defender resolves it.
type AttackPayload struct {
	GameID   string         `json:"gameId"`
	Attacker string         `json:"attacker"`
	Defender string         `json:"defender"`
	Position board.Position `json:"position"`
}

// SpecialAttackPayload is an area shot anchored at Position.
type SpecialAttackPayload struct {
	GameID      string         `json:"gameId"`
	Attacker    string         `json:"attacker"`
	Defender    string         `json:"defender"`
	Position    board.Position `json:"position"`
	SpecialType string         `json:"specialType"`
}

// CellResult is the outcome of one cell of an area shot.
type CellResult struct {
	Position      board.Position `json:"position"`
	Hit           bool           `json:"hit"`
	ShipDestroyed *string        `json:"shipDestroyed"`
}

// AttackResultPayload echoes the defender's verdict back to the attacker.
// For area shots Cells lists every resolved cell and the top-level fields
// summarize them: Hit is true if any cell hit.
type AttackResultPayload struct {
	GameID        string         `json:"gameId"`
	Attacker      string         `json:"attacker"`
	Defender      string         `json:"defender"`
	Position      board.Position `json:"position"`
	Hit           bool           `json:"hit"`
	ShipDestroyed *string        `json:"shipDestroyed"`
	SpecialType   string         `json:"specialType,omitempty"`
	Cells         []CellResult   `json:"cells,omitempty"`
}

// GameOverPayload ends the game.
type GameOverPayload struct {
	GameID string `json:"gameId"`
	Winner string `json:"winner"`
}

// InvitePayload is used by both INVITE and ACCEPT_INVITE.
type InvitePayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	GameID string `json:"gameId,omitempty"`
}

// ErrorPayload is a relay-reported failure.
type ErrorPayload struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

// Relay error codes
const (
	ErrCodeUnknown     = 1000
	ErrCodeInvalidMsg  = 1001
	ErrCodePeerOffline = 1002
	ErrCodeNotInGame   = 1003
	ErrCodeGameFull    = 1004
	ErrCodeNameTaken   = 1005
	ErrCodeRateLimited = 1006
)

// ErrorMessages maps relay error codes to text.
var ErrorMessages = map[int]string{
	ErrCodeUnknown:     "unknown error",
	ErrCodeInvalidMsg:  "invalid message",
	ErrCodePeerOffline: "opponent is not connected",
	ErrCodeNotInGame:   "join a game first",
	ErrCodeGameFull:    "game already has two players",
	ErrCodeNameTaken:   "name is already taken",
	ErrCodeRateLimited: "too many messages, slow down",
}

// StrPtr returns a pointer to s, or nil when s is empty. Used for the
// nullable shipDestroyed field.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal dereferences a nullable string field.
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
