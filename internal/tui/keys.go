package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit     key.Binding
	Quit       key.Binding
	CtrlC      key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
}

var keys = keyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("up", "ctrl+up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("down", "ctrl+down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
	),
}
