package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the incident board.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Help toggle
	Help key.Binding

	// Reload from the store
	Refresh key.Binding

	// Board actions
	MoveLeft     key.Binding
	MoveRight    key.Binding
	Archive      key.Binding
	Restore      key.Binding
	ShowArchived key.Binding
	Report       key.Binding

	// Detail actions
	Toggle    key.Binding
	EditNotes key.Binding
	Save      key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev column"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next column"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open incident"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H", "<"),
			key.WithHelp("H/<", "move left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L", ">"),
			key.WithHelp("L/>", "move right"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive"),
		),
		Restore: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "restore"),
		),
		ShowArchived: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "board/archive"),
		),
		Report: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "manual report"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle item"),
		),
		EditNotes: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "edit notes"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save notes"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Left, k.Right, k.Select, k.MoveLeft, k.MoveRight,
		k.Archive, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back},
		{k.MoveLeft, k.MoveRight, k.Archive, k.Restore, k.ShowArchived},
		{k.Toggle, k.EditNotes, k.Save, k.Report},
		{k.Refresh, k.Help, k.Quit},
	}
}
