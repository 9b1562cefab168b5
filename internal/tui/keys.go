package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Tab      key.Binding
	Enter    key.Binding
	Start    key.Binding
	Pause    key.Binding
	Stop     key.Binding
	Notes    key.Binding
	Invoices key.Binding
	Cycle    key.Binding
	Help     key.Binding
	Quit     key.Binding
	Escape   key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left pane")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right pane")),
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start timer")),
	Pause:    key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "pause/resume")),
	Stop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop timer")),
	Notes:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "edit notes")),
	Invoices: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "entries/invoices")),
	Cycle:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cycle invoice status")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
