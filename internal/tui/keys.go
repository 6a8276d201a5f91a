package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings.
type KeyMap struct {
	Start   key.Binding
	Stop    key.Binding
	Pause   key.Binding
	Abort   key.Binding
	Reset   key.Binding
	SOAP    key.Binding
	Patient key.Binding
	Panel   key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start dictation"),
		),
		Stop: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "finish note"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause/resume"),
		),
		Abort: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "discard"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset transcript"),
		),
		SOAP: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "request SOAP"),
		),
		Patient: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "patient name"),
		),
		Panel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "cycle panel"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel input"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
