// Package model defines the core types and interfaces for the UI.
package model

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/game/session"
	"github.com/ivanwe2/battleships/internal/sound"
)

// Screen is what the terminal currently shows.
type Screen int

const (
	ScreenConnecting Screen = iota
	ScreenLogin
	ScreenLobby
	ScreenPlacement
	ScreenBattle
	ScreenGameOver
)

// InputMode says what the text input is collecting.
type InputMode int

const (
	InputNone InputMode = iota
	InputName
	InputInvite
)

// NotificationType represents types of system notifications.
type NotificationType int

const (
	NotifyError        NotificationType = iota // temporary
	NotifyReconnecting                         // persistent
	NotifyInfo                                 // temporary
)

// SystemNotification is a one-line banner.
type SystemNotification struct {
	Message   string
	Type      NotificationType
	Temporary bool
}

// --- Tea Messages ---

// SessionEventMsg carries a session event into the update loop.
type SessionEventMsg struct {
	Event session.Event
}

// ConnectedMsg indicates the first connection succeeded.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates the first connection failed.
type ConnectionErrorMsg struct {
	Err error
}

// ClearNotificationMsg removes a temporary notification.
type ClearNotificationMsg struct {
	Type NotificationType
}

// SoundPlayer plays audio cues.
type SoundPlayer interface {
	Play(sound.Cue)
}

// --- Model Interface ---

// Model is what the view and input packages need from the main model.
type Model interface {
	Screen() Screen
	Session() *session.Session
	Connected() bool
	ConnectionError() string

	// cursor and placement selection
	Cursor() board.Position
	MoveCursor(dRow, dCol int)
	Orientation() board.Orientation
	ToggleOrientation()
	SelectedShip() board.ShipType
	CycleShip(step int)

	// UI components
	Input() *textinput.Model
	InputMode() InputMode
	SetInputMode(InputMode)
	Timer() *timer.Model
	Help() *help.Model
	Keys() KeyMap
	ShowingHelp() bool
	SetShowingHelp(bool)

	// notifications and the event feed
	SetNotification(notifyType NotificationType, message string, temporary bool) tea.Cmd
	ClearNotification(notifyType NotificationType)
	CurrentNotification() *SystemNotification
	Feed() []string

	// Dimensions
	Width() int
	Height() int
}
