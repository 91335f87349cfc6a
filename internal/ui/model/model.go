package model

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ivanwe2/battleships/internal/game/board"
	"github.com/ivanwe2/battleships/internal/game/session"
	"github.com/ivanwe2/battleships/internal/logger"
	"github.com/ivanwe2/battleships/internal/sound"
	"github.com/ivanwe2/battleships/internal/ui/common"
)

const (
	eventBuffer      = 256
	feedSize         = 8
	notificationTime = 3 * time.Second
	connectTimeout   = 10 * time.Second
)

// Connector opens the relay connection.
type Connector interface {
	Connect(ctx context.Context) error
}

// OnlineModel is the bubbletea model of the client. The session owns all
// game state; the model only keeps what is purely presentational.
type OnlineModel struct {
	sess   *session.Session
	conn   Connector
	events chan tea.Msg

	connected bool
	connErr   string

	cursor      board.Position
	orientation board.Orientation
	shipIdx     int

	input       textinput.Model
	inputMode   InputMode
	timer       timer.Model
	help        help.Model
	keys        KeyMap
	showingHelp bool

	notifications map[NotificationType]*SystemNotification
	feed          []string

	width  int
	height int

	sounds SoundPlayer

	// View renderer (injected to break circular import)
	viewRenderer func(Model) string

	// Key handler (injected to break circular import)
	keyHandler func(Model, tea.KeyMsg) (bool, tea.Cmd)
}

// NewOnlineModel creates the model and subscribes to the session's events.
func NewOnlineModel(s *session.Session, conn Connector) *OnlineModel {
	ti := textinput.New()
	ti.CharLimit = 24
	ti.Width = 30

	m := &OnlineModel{
		sess:          s,
		conn:          conn,
		events:        make(chan tea.Msg, eventBuffer),
		orientation:   board.Horizontal,
		input:         ti,
		help:          help.New(),
		keys:          DefaultKeyMap(),
		notifications: make(map[NotificationType]*SystemNotification),
	}
	s.SetListener(m.push)
	return m
}

// push runs on session goroutines and must never block them.
func (m *OnlineModel) push(ev session.Event) {
	select {
	case m.events <- SessionEventMsg{Event: ev}:
	default:
		logger.LogWarn("ui event buffer full, dropping %s event", ev.Kind)
	}
}

func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.listen(), textinput.Blink)
}

func (m *OnlineModel) connect() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		if err := m.conn.Connect(ctx); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *OnlineModel) listen() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// --- Model interface implementation ---

func (m *OnlineModel) Session() *session.Session      { return m.sess }
func (m *OnlineModel) Connected() bool                { return m.connected }
func (m *OnlineModel) Cursor() board.Position         { return m.cursor }
func (m *OnlineModel) Orientation() board.Orientation { return m.orientation }
func (m *OnlineModel) ToggleOrientation()             { m.orientation = m.orientation.Toggle() }
func (m *OnlineModel) Input() *textinput.Model        { return &m.input }
func (m *OnlineModel) InputMode() InputMode           { return m.inputMode }
func (m *OnlineModel) Timer() *timer.Model            { return &m.timer }
func (m *OnlineModel) Help() *help.Model              { return &m.help }
func (m *OnlineModel) Keys() KeyMap                   { return m.keys }
func (m *OnlineModel) ShowingHelp() bool              { return m.showingHelp }
func (m *OnlineModel) SetShowingHelp(v bool)          { m.showingHelp = v }
func (m *OnlineModel) Width() int                     { return m.width }
func (m *OnlineModel) Height() int                    { return m.height }

// Screen derives the current screen from the connection and session phase.
func (m *OnlineModel) Screen() Screen {
	if !m.connected {
		return ScreenConnecting
	}
	switch m.sess.Phase() {
	case session.PhasePlacement:
		return ScreenPlacement
	case session.PhaseBattle:
		return ScreenBattle
	case session.PhaseGameOver:
		return ScreenGameOver
	}
	if !m.sess.Registered() {
		return ScreenLogin
	}
	return ScreenLobby
}

// MoveCursor moves the board cursor, staying on the board.
func (m *OnlineModel) MoveCursor(dRow, dCol int) {
	size := len(m.sess.OwnBoard())
	next := m.cursor.Add(dRow, dCol)
	next.Row = min(max(next.Row, 0), size-1)
	next.Col = min(max(next.Col, 0), size-1)
	m.cursor = next
}

// SelectedShip returns the ship type placed by the next Select.
func (m *OnlineModel) SelectedShip() board.ShipType {
	return board.ShipTypes[m.shipIdx]
}

// CycleShip moves the ship selection by step, skipping types with nothing
// left to place. Step 0 keeps the current type if it still has ships left.
// The selection stays put when everything is placed.
func (m *OnlineModel) CycleShip(step int) {
	n := len(board.ShipTypes)
	dir, first := step, 1
	if step == 0 {
		dir, first = 1, 0
	}
	for i := first; i < first+n; i++ {
		idx := ((m.shipIdx+dir*i)%n + n) % n
		if m.sess.RemainingShips(board.ShipTypes[idx]) > 0 {
			m.shipIdx = idx
			return
		}
	}
}

// SetInputMode focuses the text input for mode, or blurs it for InputNone.
func (m *OnlineModel) SetInputMode(mode InputMode) {
	m.inputMode = mode
	m.input.Reset()
	switch mode {
	case InputName:
		m.input.Placeholder = "your name"
		m.input.Focus()
	case InputInvite:
		m.input.Placeholder = "player to invite"
		m.input.Focus()
	default:
		m.input.Blur()
	}
}

// SetNotification shows a banner. Temporary banners clear themselves; the
// returned command schedules that.
func (m *OnlineModel) SetNotification(notifyType NotificationType, message string, temporary bool) tea.Cmd {
	m.notifications[notifyType] = &SystemNotification{
		Message:   message,
		Type:      notifyType,
		Temporary: temporary,
	}
	if !temporary {
		return nil
	}
	return tea.Tick(notificationTime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{Type: notifyType}
	})
}

func (m *OnlineModel) ClearNotification(notifyType NotificationType) {
	delete(m.notifications, notifyType)
}

// CurrentNotification returns the most important banner, or nil.
func (m *OnlineModel) CurrentNotification() *SystemNotification {
	for _, t := range []NotificationType{NotifyError, NotifyReconnecting, NotifyInfo} {
		if n, ok := m.notifications[t]; ok {
			return n
		}
	}
	return nil
}

// Feed returns the latest event texts, oldest first.
func (m *OnlineModel) Feed() []string { return m.feed }

func (m *OnlineModel) addFeed(text string) {
	if text == "" {
		return
	}
	m.feed = append(m.feed, text)
	if len(m.feed) > feedSize {
		m.feed = m.feed[len(m.feed)-feedSize:]
	}
}

// ConnectionError returns why the relay is unreachable, if known.
func (m *OnlineModel) ConnectionError() string { return m.connErr }

// SetViewRenderer sets the view rendering function.
func (m *OnlineModel) SetViewRenderer(fn func(Model) string) {
	m.viewRenderer = fn
}

// SetSoundPlayer enables audio cues for game events. nil mutes.
func (m *OnlineModel) SetSoundPlayer(p SoundPlayer) {
	m.sounds = p
}

// SetKeyHandler sets the keyboard event handler function.
func (m *OnlineModel) SetKeyHandler(fn func(Model, tea.KeyMsg) (bool, tea.Cmd)) {
	m.keyHandler = fn
}

// Update handles tea messages.
func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case ConnectedMsg:
		m.connected = true
		m.connErr = ""
		if name := m.sess.Player(); name != "" {
			if err := m.sess.Register(name); err != nil {
				cmds = append(cmds, m.SetNotification(NotifyError, err.Error(), true))
			}
		} else {
			m.SetInputMode(InputName)
		}

	case ConnectionErrorMsg:
		m.connErr = msg.Err.Error()

	case SessionEventMsg:
		cmds = append(cmds, m.handleEvent(msg.Event), m.listen())

	case ClearNotificationMsg:
		if n, ok := m.notifications[msg.Type]; ok && n.Temporary {
			m.ClearNotification(msg.Type)
		}

	case tea.KeyMsg:
		if m.keyHandler != nil {
			handled, cmd := m.keyHandler(m, msg)
			if handled {
				return m, cmd
			}
			cmds = append(cmds, cmd)
		}

	case timer.TickMsg, timer.StartStopMsg, timer.TimeoutMsg:
		var cmd tea.Cmd
		m.timer, cmd = m.timer.Update(msg)
		return m, cmd
	}

	if m.inputMode != InputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *OnlineModel) handleEvent(ev session.Event) tea.Cmd {
	var cmd tea.Cmd
	if m.sounds != nil {
		if cue, ok := sound.CueFor(ev, m.sess.Player()); ok {
			m.sounds.Play(cue)
		}
	}

	switch ev.Kind {
	case session.EventWarning, session.EventRelayError:
		cmd = m.SetNotification(NotifyError, ev.Text, true)
		if m.Screen() == ScreenLogin && m.inputMode == InputNone {
			m.SetInputMode(InputName)
		}

	case session.EventStatus:
		switch ev.Text {
		case "reconnecting":
			m.SetNotification(NotifyReconnecting, "Connection lost, reconnecting...", false)
			return nil
		case "connected":
			m.ClearNotification(NotifyReconnecting)
			return nil
		case "connecting":
			return nil
		case "disconnected":
			m.ClearNotification(NotifyReconnecting)
			m.connected = false
			m.connErr = "connection to the relay was lost"
			return m.timer.Stop()
		}
		if m.inputMode == InputName && m.sess.Registered() {
			m.SetInputMode(InputNone)
		}

	case session.EventInvite:
		cmd = m.SetNotification(NotifyInfo, ev.Text, true)

	case session.EventPhase:
		m.cursor = board.Position{}
		m.shipIdx = 0
		m.showingHelp = false
		if ev.Phase == session.PhasePlacement {
			m.CycleShip(0)
		}
		if ev.Phase != session.PhaseBattle {
			cmd = m.timer.Stop()
		}

	case session.EventPlaced:
		if m.sess.RemainingShips(m.SelectedShip()) == 0 {
			m.CycleShip(1)
		}

	case session.EventTurn:
		if remaining := m.sess.Remaining(); remaining > 0 {
			m.timer = timer.NewWithInterval(remaining, time.Second)
			cmd = m.timer.Init()
		}
	}

	m.addFeed(ev.Text)
	return cmd
}

// View renders the model.
func (m *OnlineModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.viewRenderer == nil {
		return "View renderer not initialized"
	}
	return common.DocStyle.Render(m.viewRenderer(m))
}
