// Package input handles keyboard input processing.
package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ivanwe2/battleships/internal/game/attack"
	"github.com/ivanwe2/battleships/internal/ui/model"
)

// HandleKeyPress handles keyboard input and returns whether it was handled.
// Unhandled keys fall through to the text input. Session errors need no
// handling here: the session reports them as warning events.
func HandleKeyPress(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	keys := m.Keys()

	if msg.Type == tea.KeyCtrlC {
		return true, quit(m)
	}
	if m.InputMode() != model.InputNone {
		return handleTextInput(m, msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return true, quit(m)
	case key.Matches(msg, keys.Help):
		m.SetShowingHelp(!m.ShowingHelp())
		return true, nil
	}

	switch m.Screen() {
	case model.ScreenLogin:
		if key.Matches(msg, keys.Select) {
			m.SetInputMode(model.InputName)
			return true, nil
		}
	case model.ScreenLobby:
		return handleLobby(m, msg)
	case model.ScreenPlacement:
		return handlePlacement(m, msg)
	case model.ScreenBattle:
		return handleBattle(m, msg)
	case model.ScreenGameOver:
		return handleGameOver(m, msg)
	}
	return false, nil
}

func quit(m model.Model) tea.Cmd {
	if m.Connected() {
		_ = m.Session().Logout()
	}
	return tea.Quit
}

func handleTextInput(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := m.Input().Value()
		switch m.InputMode() {
		case model.InputName:
			// the mode is cleared once the relay confirms the name
			_ = m.Session().Register(value)
			m.Input().Reset()
		case model.InputInvite:
			if m.Session().Invite(value) == nil {
				m.SetInputMode(model.InputNone)
			}
		}
		return true, nil
	case tea.KeyEsc:
		if m.InputMode() != model.InputName {
			m.SetInputMode(model.InputNone)
		}
		return true, nil
	}
	return false, nil
}

// handleMove moves the cursor for the arrow bindings.
func handleMove(m model.Model, msg tea.KeyMsg) bool {
	keys := m.Keys()
	switch {
	case key.Matches(msg, keys.Up):
		m.MoveCursor(-1, 0)
	case key.Matches(msg, keys.Down):
		m.MoveCursor(1, 0)
	case key.Matches(msg, keys.Left):
		m.MoveCursor(0, -1)
	case key.Matches(msg, keys.Right):
		m.MoveCursor(0, 1)
	default:
		return false
	}
	return true
}

func handleLobby(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	keys := m.Keys()
	s := m.Session()
	switch {
	case key.Matches(msg, keys.Invite):
		m.SetInputMode(model.InputInvite)
	case key.Matches(msg, keys.Accept):
		if invites := s.PendingInvites(); len(invites) > 0 {
			_ = s.AcceptInvite(invites[0])
		}
	case key.Matches(msg, keys.Leave):
		if s.GameID() != "" {
			_ = s.Leave()
		}
	default:
		return false, nil
	}
	return true, nil
}

func handlePlacement(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if handleMove(m, msg) {
		return true, nil
	}

	keys := m.Keys()
	s := m.Session()
	switch {
	case key.Matches(msg, keys.Rotate):
		m.ToggleOrientation()
	case key.Matches(msg, keys.NextShip):
		m.CycleShip(1)
	case key.Matches(msg, keys.PrevShip):
		m.CycleShip(-1)
	case key.Matches(msg, keys.Select):
		_ = s.PlaceShip(m.SelectedShip(), m.Cursor(), m.Orientation())
	case key.Matches(msg, keys.Remove):
		if s.RemoveShip(m.Cursor()) == nil {
			m.CycleShip(0)
		}
	case key.Matches(msg, keys.Auto):
		_ = s.AutoPlace()
	case key.Matches(msg, keys.Clear):
		if s.ClearFleet() == nil {
			m.CycleShip(0)
		}
	case key.Matches(msg, keys.Ready):
		_ = s.Ready()
	case key.Matches(msg, keys.Leave):
		_ = s.Leave()
	default:
		return false, nil
	}
	return true, nil
}

func handleBattle(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	if handleMove(m, msg) {
		return true, nil
	}

	keys := m.Keys()
	s := m.Session()
	switch {
	case key.Matches(msg, keys.Plain):
		_ = s.SelectMunition(attack.None)
	case key.Matches(msg, keys.AreaA):
		_ = s.SelectMunition(attack.AreaA)
	case key.Matches(msg, keys.AreaB):
		_ = s.SelectMunition(attack.AreaB)
	case key.Matches(msg, keys.Select):
		_ = s.Fire(m.Cursor())
	case key.Matches(msg, keys.Leave):
		_ = s.Leave()
	default:
		return false, nil
	}
	return true, nil
}

func handleGameOver(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	keys := m.Keys()
	s := m.Session()
	switch {
	case key.Matches(msg, keys.PlayAgain), key.Matches(msg, keys.Leave):
		_ = s.PlayAgain()
	default:
		return false, nil
	}
	return true, nil
}
