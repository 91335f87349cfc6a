//go:build !production

package model

import (
	"context"
	"math/rand/v2"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/mock"

	"github.com/ivanwe2/battleships/internal/game/placement"
	"github.com/ivanwe2/battleships/internal/game/session"
	"github.com/ivanwe2/battleships/internal/game/turn"
	"github.com/ivanwe2/battleships/internal/network/protocol"
)

// TestGameID is the game the harness joins.
const TestGameID = "alice-bob"

type nopConnector struct{}

func (nopConnector) Connect(context.Context) error { return nil }

// TestHarness drives an OnlineModel for "alice" against a session whose
// sender is mocked. Session events are fed back through Update by Drain.
type TestHarness struct {
	Model   *OnlineModel
	Session *session.Session
	Sender  *session.MockSender
	Clock   *turn.ManualClock
}

// NewTestHarness builds a connected-but-unregistered model.
func NewTestHarness(limits placement.Limits) *TestHarness {
	h := &TestHarness{Sender: &session.MockSender{}, Clock: turn.NewManualClock()}
	h.Sender.On("Send", mock.Anything).Return(nil)
	h.Session = session.New(session.Options{
		Player:      "alice",
		TurnTimeout: 60 * time.Second,
		Limits:      limits,
		Rand:        rand.New(rand.NewPCG(7, 7)),
		Clock:       h.Clock,
	}, h.Sender)
	h.Model = NewOnlineModel(h.Session, nopConnector{})
	h.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// Update applies msg and drains the events it caused. Returned commands are
// not run.
func (h *TestHarness) Update(msg tea.Msg) tea.Cmd {
	_, cmd := h.Model.Update(msg)
	h.Drain()
	return cmd
}

// Drain feeds every queued session event to the model.
func (h *TestHarness) Drain() {
	for {
		select {
		case msg := <-h.Model.events:
			_, _ = h.Model.Update(msg)
		default:
			return
		}
	}
}

// Deliver hands an inbound relay message to the session.
func (h *TestHarness) Deliver(t protocol.MessageType, payload any) {
	_ = h.Session.HandleMessage(protocol.MustNewMessage(t, payload))
	h.Drain()
}

// Key presses a key by name: "enter", "esc", "tab", "shift+tab", "up",
// "down", "left", "right", "ctrl+c" or a literal rune string.
func (h *TestHarness) Key(name string) tea.Cmd {
	return h.Update(KeyMsg(name))
}

// KeyMsg builds the tea.KeyMsg for a key name.
func KeyMsg(name string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"shift+tab": tea.KeyShiftTab,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"left":      tea.KeyLeft,
		"right":     tea.KeyRight,
		"ctrl+c":    tea.KeyCtrlC,
		"backspace": tea.KeyBackspace,
	}
	if t, ok := special[name]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

// ToLobby connects and registers.
func (h *TestHarness) ToLobby() {
	h.Update(ConnectedMsg{})
	h.Deliver(protocol.MsgRegisterSuccess, protocol.RegisterPayload{Username: "alice"})
}

// ToPlacement joins TestGameID against bob.
func (h *TestHarness) ToPlacement() {
	h.ToLobby()
	_ = h.Session.Join(TestGameID, "bob")
	h.Drain()
	h.Deliver(protocol.MsgGameReady, protocol.GameReadyPayload{GameID: TestGameID, FirstPlayer: "alice", Opponent: "bob"})
}

// ToBattle places the fleet automatically and starts the battle with alice
// moving first.
func (h *TestHarness) ToBattle() {
	h.ToPlacement()
	_ = h.Session.AutoPlace()
	_ = h.Session.Ready()
	h.Drain()
	h.Deliver(protocol.MsgShipsPlaced, protocol.ShipsPlacedPayload{
		GameID: TestGameID, Player: "bob",
		Ships: []protocol.ShipInfo{{Type: "destroyer", Size: 2}},
	})
	h.Deliver(protocol.MsgGameStart, protocol.GameStartPayload{GameID: TestGameID, FirstPlayer: "alice"})
}
