// Package apperrors defines the error values shared by the game core, the
// session and the transport.
package apperrors

import "errors"

// Error codes. 1xxx are validation errors, 2xxx protocol errors and 3xxx
// transport errors.
const (
	CodeOutOfBounds     = 1001
	CodeOverlap         = 1002
	CodeTooClose        = 1003
	CodeLimitReached    = 1004
	CodeDuplicateAttack = 1005
	CodeFleetIncomplete = 1006
	CodeNoMunitions     = 1007
	CodeNotYourTurn     = 1008
	CodeAwaitingResult  = 1009
	CodeUnknownShip     = 1010
	CodeNoShipAt        = 1011
	CodeUnknownPlayer   = 1012

	CodeWrongPhase       = 2001
	CodeUnknownMessage   = 2002
	CodeMalformedMessage = 2003

	CodeNotConnected   = 3001
	CodeSendBufferFull = 3002
)

// GameError is an error with a stable numeric code.
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Validation errors. Always recoverable; reported to the player.
var (
	ErrOutOfBounds     = &GameError{Code: CodeOutOfBounds, Message: "position is outside the board"}
	ErrOverlap         = &GameError{Code: CodeOverlap, Message: "ship overlaps another ship"}
	ErrTooClose        = &GameError{Code: CodeTooClose, Message: "ship touches another ship"}
	ErrLimitReached    = &GameError{Code: CodeLimitReached, Message: "all ships of this type are already placed"}
	ErrDuplicateAttack = &GameError{Code: CodeDuplicateAttack, Message: "position was already attacked"}
	ErrFleetIncomplete = &GameError{Code: CodeFleetIncomplete, Message: "place all ships before continuing"}
	ErrNoMunitions     = &GameError{Code: CodeNoMunitions, Message: "no special munitions of this type left"}
	ErrNotYourTurn     = &GameError{Code: CodeNotYourTurn, Message: "it is not your turn"}
	ErrAwaitingResult  = &GameError{Code: CodeAwaitingResult, Message: "waiting for the result of the previous attack"}
	ErrUnknownShip     = &GameError{Code: CodeUnknownShip, Message: "unknown ship type"}
	ErrNoShipAt        = &GameError{Code: CodeNoShipAt, Message: "no ship at this position"}
	ErrUnknownPlayer   = &GameError{Code: CodeUnknownPlayer, Message: "invalid player name"}
)

// Protocol errors. Logged and dropped.
var (
	ErrWrongPhase       = &GameError{Code: CodeWrongPhase, Message: "action not allowed in the current phase"}
	ErrUnknownMessage   = &GameError{Code: CodeUnknownMessage, Message: "unknown message type"}
	ErrMalformedMessage = &GameError{Code: CodeMalformedMessage, Message: "malformed message"}
)

// Transport errors.
var (
	ErrNotConnected   = &GameError{Code: CodeNotConnected, Message: "not connected to the relay"}
	ErrSendBufferFull = &GameError{Code: CodeSendBufferFull, Message: "send buffer full"}
)

// Kind classifies an error by code range.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindProtocol
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindProtocol:
		return "protocol"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// KindOf returns the category of err, or KindUnknown if err is not a GameError.
func KindOf(err error) Kind {
	var ge *GameError
	if !errors.As(err, &ge) {
		return KindUnknown
	}
	switch ge.Code / 1000 {
	case 1:
		return KindValidation
	case 2:
		return KindProtocol
	case 3:
		return KindTransport
	default:
		return KindUnknown
	}
}

// IsRecoverable reports whether err is a validation error that should be
// surfaced to the player as a warning.
func IsRecoverable(err error) bool {
	return KindOf(err) == KindValidation
}
