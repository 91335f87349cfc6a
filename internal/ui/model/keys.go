package model

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists every key binding of the client.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding

	Rotate   key.Binding
	NextShip key.Binding
	PrevShip key.Binding
	Remove   key.Binding
	Auto     key.Binding
	Clear    key.Binding
	Ready    key.Binding

	Plain key.Binding
	AreaA key.Binding
	AreaB key.Binding

	Invite    key.Binding
	Accept    key.Binding
	PlayAgain key.Binding
	Leave     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "place / fire")),

		Rotate:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rotate")),
		NextShip: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next ship")),
		PrevShip: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous ship")),
		Remove:   key.NewBinding(key.WithKeys("x", "delete", "backspace"), key.WithHelp("x", "remove ship")),
		Auto:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto place")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear board")),
		Ready:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "ready")),

		Plain: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "single shot")),
		AreaA: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "2x2 strike")),
		AreaB: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "double shot")),

		Invite:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invite")),
		Accept:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "accept invite")),
		PlayAgain: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play again")),
		Leave:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave game")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Rotate, k.Ready, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select},
		{k.Rotate, k.NextShip, k.PrevShip, k.Remove, k.Auto, k.Clear, k.Ready},
		{k.Plain, k.AreaA, k.AreaB},
		{k.Invite, k.Accept, k.PlayAgain, k.Leave, k.Help, k.Quit},
	}
}
