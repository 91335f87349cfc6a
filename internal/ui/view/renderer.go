// Package view provides UI rendering functions.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ivanwe2/battleships/internal/game/attack"
	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/ui/common"
	"github.com/ivanwe2/battleships/internal/ui/model"
)

// CreateViewRenderer creates a view renderer function that can be injected into OnlineModel.
func CreateViewRenderer() func(model.Model) string {
	return Render
}

// Render draws the current screen of m.
func Render(m model.Model) string {
	var content string
	switch m.Screen() {
	case model.ScreenConnecting:
		content = ConnectingView(m)
	case model.ScreenLogin:
		content = LoginView(m)
	case model.ScreenLobby:
		content = LobbyView(m)
	case model.ScreenPlacement:
		content = PlacementView(m)
	case model.ScreenBattle:
		content = BattleView(m)
	case model.ScreenGameOver:
		content = GameOverView(m)
	default:
		content = "Unknown screen"
	}

	parts := []string{content}
	if n := m.CurrentNotification(); n != nil {
		parts = append(parts, renderNotification(n))
	}
	if m.ShowingHelp() {
		parts = append(parts, m.Help().FullHelpView(m.Keys().FullHelp()))
	} else {
		parts = append(parts, m.Help().ShortHelpView(m.Keys().ShortHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderNotification(n *model.SystemNotification) string {
	style := common.InfoStyle
	switch n.Type {
	case model.NotifyError:
		style = common.ErrorStyle
	case model.NotifyReconnecting:
		style = common.WaitStyle
	}
	return common.PromptStyle.Render(style.Render(n.Message))
}

// ConnectingView is shown until the relay connection is up.
func ConnectingView(m model.Model) string {
	text := "Connecting to the relay..."
	if err := m.ConnectionError(); err != "" {
		text = common.ErrorStyle.Render("Cannot reach the relay: "+err) + "\n\nPress q to quit"
	}
	return lipgloss.Place(m.Width(), max(m.Height()-4, 1), lipgloss.Center, lipgloss.Center, text)
}

// LoginView asks for a player name.
func LoginView(m model.Model) string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("BATTLESHIPS"))
	sb.WriteString("\n\nChoose a name to register on the relay:\n\n")
	sb.WriteString(m.Input().View())
	return lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.BoxStyle.Render(sb.String()))
}

// LobbyView lists online players and pending invitations.
func LobbyView(m model.Model) string {
	s := m.Session()
	var sb strings.Builder

	sb.WriteString(common.TitleStyle("BATTLESHIPS"))
	sb.WriteString(fmt.Sprintf("\n\nWelcome, %s!\n\n", s.Player()))

	sb.WriteString("Online players:\n")
	players := s.OnlinePlayers()
	if len(players) == 0 {
		sb.WriteString(common.InfoStyle.Render("  nobody else is online"))
		sb.WriteString("\n")
	}
	for _, p := range players {
		sb.WriteString("  • " + common.TruncateName(p, 20) + "\n")
	}

	if invites := s.PendingInvites(); len(invites) > 0 {
		sb.WriteString("\nInvitations (y to accept the first):\n")
		for _, from := range invites {
			sb.WriteString("  ✉ " + common.TruncateName(from, 20) + "\n")
		}
	}

	if id := s.GameID(); id != "" {
		sb.WriteString(common.WaitStyle.Render(fmt.Sprintf("\nWaiting for %s to join %s", s.Opponent(), id)))
		sb.WriteString("\n")
	}

	if m.InputMode() == model.InputInvite {
		sb.WriteString("\nInvite: " + m.Input().View())
	} else {
		sb.WriteString(common.InfoStyle.Render("\ni invite a player · y accept · q quit"))
	}

	box := common.BoxStyle.Render(sb.String())
	return lipgloss.JoinVertical(lipgloss.Left, box, renderFeed(m.Feed()))
}

// PlacementView shows the player's board with the ship about to be placed.
func PlacementView(m model.Model) string {
	s := m.Session()
	size := len(s.OwnBoard())

	preview := make(board.PositionSet)
	if !s.FleetComplete() {
		ship := board.NewShip(m.SelectedShip(), m.Cursor(), m.Orientation())
		for _, c := range ship.Cells() {
			if c.Row < size && c.Col < size {
				preview.Add(c)
			}
		}
	} else {
		preview.Add(m.Cursor())
	}
	own := RenderBoard("Your fleet", s.OwnBoard(), preview)

	var side strings.Builder
	side.WriteString(fmt.Sprintf("Game %s vs %s\n\n", s.GameID(), s.Opponent()))
	side.WriteString("Ships to place:\n")
	for _, t := range board.ShipTypes {
		left := s.RemainingShips(t)
		marker := "  "
		if t == m.SelectedShip() && !s.FleetComplete() {
			marker = "▶ "
		}
		line := fmt.Sprintf("%s%-10s (%d) x%d", marker, t, board.SizeOf(t), left)
		if left == 0 {
			line = common.InfoStyle.Render(line)
		}
		side.WriteString(line + "\n")
	}
	side.WriteString(fmt.Sprintf("\nOrientation: %s\n", m.Orientation()))

	switch {
	case s.ShipsSent():
		side.WriteString(common.WaitStyle.Render("\nFleet ready, waiting for " + s.Opponent()))
	case s.FleetComplete():
		side.WriteString(common.TurnStyle.Render("\nFleet complete, press g when ready"))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, own, "   ", common.BoxStyle.Render(side.String()))
	return lipgloss.JoinVertical(lipgloss.Left, body, Legend(), renderFeed(m.Feed()))
}

// BattleView shows both boards, the turn, the countdown and munitions.
func BattleView(m model.Model) string {
	s := m.Session()
	size := len(s.TargetBoard())

	var aim board.PositionSet
	if s.IsMyTurn() {
		aim = board.NewPositionSet(attack.Pattern(s.SelectedMunition(), m.Cursor(), size)...)
	}
	boards := lipgloss.JoinHorizontal(lipgloss.Top,
		RenderBoard("Your fleet", s.OwnBoard(), nil),
		"   ",
		RenderBoard("Enemy waters", s.TargetBoard(), aim),
	)

	return lipgloss.JoinVertical(lipgloss.Left, boards, Legend(), renderTurn(m), renderMunitions(m), renderFeed(m.Feed()))
}

func renderTurn(m model.Model) string {
	s := m.Session()
	countdown := common.FormatCountdown(m.Timer().Timeout)
	switch {
	case s.IsMyTurn() && s.Awaiting():
		return common.WaitStyle.Render("Waiting for the result... " + countdown)
	case s.IsMyTurn():
		return common.TurnStyle.Render(fmt.Sprintf("Your turn, aim at %s and fire  %s", m.Cursor(), countdown))
	default:
		return common.WaitStyle.Render(fmt.Sprintf("%s is aiming...  %s", s.ActivePlayer(), countdown))
	}
}

func renderMunitions(m model.Model) string {
	s := m.Session()
	left := s.Munitions()
	parts := []string{label(s.SelectedMunition() == attack.None, "1 single")}
	for i, mu := range attack.Specials {
		parts = append(parts, label(s.SelectedMunition() == mu, fmt.Sprintf("%d %s x%d", i+2, mu, left[mu])))
	}
	return strings.Join(parts, "  ")
}

func label(selected bool, text string) string {
	if selected {
		return common.CursorStyle.Render("[" + text + "]")
	}
	return common.InfoStyle.Render(" " + text + " ")
}

// GameOverView announces the winner.
func GameOverView(m model.Model) string {
	s := m.Session()
	headline := common.ErrorStyle.Render("You lost.")
	if s.Winner() == s.Player() {
		headline = common.TurnStyle.Render("You won!")
	}

	var sb strings.Builder
	sb.WriteString(common.TitleStyle("GAME OVER"))
	sb.WriteString("\n\n" + headline + "\n")
	sb.WriteString(fmt.Sprintf("Winner: %s\n\n", s.Winner()))
	sb.WriteString(common.InfoStyle.Render("p play again · q quit"))

	boards := lipgloss.JoinHorizontal(lipgloss.Top,
		RenderBoard("Your fleet", s.OwnBoard(), nil),
		"   ",
		RenderBoard("Enemy waters", s.TargetBoard(), nil),
	)
	return lipgloss.JoinVertical(lipgloss.Left, common.BoxStyle.Render(sb.String()), boards, renderFeed(m.Feed()))
}

func renderFeed(feed []string) string {
	if len(feed) == 0 {
		return ""
	}
	return common.PromptStyle.Render(common.InfoStyle.Render(strings.Join(feed, "\n")))
}
