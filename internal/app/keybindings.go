package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keybindings for wgen.
type KeyMap struct {
	// Gallery
	Next     key.Binding
	Prev     key.Binding
	Generate key.Binding
	Save     key.Binding
	Settings key.Binding

	// Lists and scrolling
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Toggle key.Binding

	// Dialogs
	Confirm key.Binding
	Cancel  key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("n", "l", "right"),
			key.WithHelp("n/l/→", "next image, or generate at the end"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "h", "left"),
			key.WithHelp("p/h/←", "previous image"),
		),
		Generate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "generate a new image"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save current image"),
		),
		Settings: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "choose categories"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle category"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpSections groups bindings for the help screen.
func (k KeyMap) helpSections() []helpSection {
	return []helpSection{
		{"Gallery", []key.Binding{k.Next, k.Prev, k.Generate, k.Save, k.Settings}},
		{"Category selection", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Toggle, k.Confirm, k.Cancel}},
		{"General", []key.Binding{k.Help, k.Quit}},
	}
}

type helpSection struct {
	name     string
	bindings []key.Binding
}
