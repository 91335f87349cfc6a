package session

import (
	"time"

	"github.com/ivanwe2/battleships/internal/game/attack"
	"github.com/ivanwe2/battleships/internal/game/board"
)

// Phase is the stage of a game.
type Phase int

const (
	PhaseLobby Phase = iota
	PhasePlacement
	PhaseBattle
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhasePlacement:
		return "placement"
	case PhaseBattle:
		return "battle"
	case PhaseGameOver:
		return "gameOver"
	default:
		return "lobby"
	}
}

// EventKind classifies an Event.
type EventKind string

const (
	EventPhase      EventKind = "phase"
	EventPlaced     EventKind = "placed"
	EventRemoved    EventKind = "removed"
	EventHit        EventKind = "hit"
	EventMiss       EventKind = "miss"
	EventDestroyed  EventKind = "destroyed"
	EventTurn       EventKind = "turn"
	EventGameOver   EventKind = "gameOver"
	EventWarning    EventKind = "warning"
	EventInvite     EventKind = "invite"
	EventStatus     EventKind = "status"
	EventRelayError EventKind = "relayError"
	EventPlayers    EventKind = "players"
)

// Event is something the presentation layer may want to show. Events are
// also kept in the session log in the order they happened.
type Event struct {
	Kind     EventKind
	Time     time.Time
	Text     string
	Player   string         // who acted, when relevant
	Position board.Position // for hit/miss/placed/removed
	Ship     board.ShipType // for placed/removed/destroyed
	Munition attack.Munition
	Phase    Phase // for phase events
	Err      error // for warnings
}

// Listener receives events after the session lock has been released.
type Listener func(Event)
