package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivanwe2/battleships/internal/game/session"
)

func TestCueFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ev     session.Event
		want   Cue
		played bool
	}{
		{"hit", session.Event{Kind: session.EventHit, Player: "bob"}, CueHit, true},
		{"miss", session.Event{Kind: session.EventMiss, Player: "alice"}, CueMiss, true},
		{"sunk", session.Event{Kind: session.EventDestroyed}, CueSunk, true},
		{"my turn", session.Event{Kind: session.EventTurn, Player: "alice"}, CueTurn, true},
		{"their turn", session.Event{Kind: session.EventTurn, Player: "bob"}, CueTurn, false},
		{"won", session.Event{Kind: session.EventGameOver, Player: "alice"}, CueWin, true},
		{"lost", session.Event{Kind: session.EventGameOver, Player: "bob"}, CueLose, true},
		{"status", session.Event{Kind: session.EventStatus, Text: "connected"}, "", false},
		{"placed", session.Event{Kind: session.EventPlaced}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CueFor(tt.ev, "alice")
			assert.Equal(t, tt.played, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestManager_SilentBeforeInit(t *testing.T) {
	t.Parallel()

	m := NewManager(t.TempDir())
	assert.NotPanics(t, func() {
		m.Play(CueHit)
		m.Close()
	})
}
