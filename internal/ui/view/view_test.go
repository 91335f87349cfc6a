package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/game/placement"
	"github.com/ivanwe2/battleships/internal/network/protocol"
	"github.com/ivanwe2/battleships/internal/ui/common"
	"github.com/ivanwe2/battleships/internal/ui/model"
)

func TestRenderBoard(t *testing.T) {
	t.Parallel()

	cells := [][]board.CellState{
		{board.CellShip, board.CellHit, board.CellEmpty},
		{board.CellMiss, board.CellEmpty, board.CellEmpty},
		{board.CellEmpty, board.CellEmpty, board.CellEmpty},
	}
	out := RenderBoard("Your fleet", cells, board.NewPositionSet(board.Pos(2, 2)))

	assert.Contains(t, out, "Your fleet")
	for _, want := range []string{common.GlyphShip, common.GlyphHit, common.GlyphMiss, common.GlyphWater, common.GlyphCursor} {
		assert.Contains(t, out, want)
	}
	for _, label := range []string{"A", "B", "C", "1", "2", "3"} {
		assert.Contains(t, out, label)
	}
	assert.NotContains(t, out, "D ")
}

func TestRender_Screens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(h *model.TestHarness)
		want  []string
	}{
		{
			name:  "connecting",
			setup: func(*model.TestHarness) {},
			want:  []string{"Connecting to the relay"},
		},
		{
			name: "connection failed",
			setup: func(h *model.TestHarness) {
				h.Update(model.ConnectionErrorMsg{Err: errors.New("dial refused")})
			},
			want: []string{"dial refused", "Press q to quit"},
		},
		{
			name:  "login",
			setup: func(h *model.TestHarness) { h.Update(model.ConnectedMsg{}) },
			want:  []string{"BATTLESHIPS", "Choose a name"},
		},
		{
			name: "lobby",
			setup: func(h *model.TestHarness) {
				h.ToLobby()
				h.Deliver(protocol.MsgSetPlayers, protocol.PlayersPayload{Players: []string{"alice", "bob"}})
				h.Deliver(protocol.MsgInvite, protocol.InvitePayload{From: "bob", To: "alice"})
			},
			want: []string{"Welcome, alice!", "bob", "Invitations"},
		},
		{
			name:  "lobby alone",
			setup: func(h *model.TestHarness) { h.ToLobby() },
			want:  []string{"nobody else is online"},
		},
		{
			name:  "placement",
			setup: func(h *model.TestHarness) { h.ToPlacement() },
			want:  []string{"Your fleet", "Ships to place:", "▶ destroyer", "vs bob"},
		},
		{
			name: "placement complete",
			setup: func(h *model.TestHarness) {
				h.ToPlacement()
				_ = h.Session.AutoPlace()
				h.Drain()
			},
			want: []string{"Fleet complete, press g when ready"},
		},
		{
			name:  "battle",
			setup: func(h *model.TestHarness) { h.ToBattle() },
			want:  []string{"Your fleet", "Enemy waters", "Your turn, aim at A1", "1:00", "area-a x1"},
		},
		{
			name: "game over",
			setup: func(h *model.TestHarness) {
				h.ToBattle()
				h.Deliver(protocol.MsgGameOver, protocol.GameOverPayload{GameID: model.TestGameID, Winner: "bob"})
			},
			want: []string{"GAME OVER", "You lost.", "Winner: bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := model.NewTestHarness(placement.Limits{board.Destroyer: 1})
			tt.setup(h)
			out := Render(h.Model)
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRender_NotificationAndHelp(t *testing.T) {
	t.Parallel()

	h := model.NewTestHarness(nil)
	h.ToLobby()
	h.Model.SetNotification(model.NotifyError, "something broke", true)

	out := Render(h.Model)
	assert.Contains(t, out, "something broke")
	assert.Contains(t, out, "quit")
	assert.NotContains(t, out, "auto place")

	h.Model.SetShowingHelp(true)
	assert.Contains(t, Render(h.Model), "auto place")
}

func TestRender_FeedShowsLatestEvents(t *testing.T) {
	t.Parallel()

	h := model.NewTestHarness(nil)
	h.ToLobby()

	out := Render(h.Model)
	assert.True(t, strings.Contains(out, "Registered as alice"))
}
