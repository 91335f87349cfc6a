// Package sound plays short audio cues for game events.
package sound

import "github.com/ivanwe2/battleships/internal/game/session"

// Cue names a sound. Files in the sound directory are matched by base name,
// so "hit.wav" or "hit.mp3" provides CueHit.
type Cue string

const (
	CueHit  Cue = "hit"
	CueMiss Cue = "miss"
	CueSunk Cue = "sunk"
	CueTurn Cue = "turn"
	CueWin  Cue = "win"
	CueLose Cue = "lose"
)

// Cues lists every cue the client plays.
var Cues = []Cue{CueHit, CueMiss, CueSunk, CueTurn, CueWin, CueLose}

// CueFor picks the cue for a session event seen by player me. Most events
// are silent.
func CueFor(ev session.Event, me string) (Cue, bool) {
	switch ev.Kind {
	case session.EventHit:
		return CueHit, true
	case session.EventMiss:
		return CueMiss, true
	case session.EventDestroyed:
		return CueSunk, true
	case session.EventTurn:
		return CueTurn, ev.Player == me
	case session.EventGameOver:
		if ev.Player == me {
			return CueWin, true
		}
		return CueLose, true
	}
	return "", false
}
