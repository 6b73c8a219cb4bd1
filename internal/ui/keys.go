package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	QuitResult key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	RevealMore key.Binding
	Reset      key.Binding
	Retry      key.Binding
	Search     key.Binding
	Focus      key.Binding
	Debug      key.Binding
}

var keys = keyMap{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	QuitResult: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Up:         key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	RevealMore: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "more")),
	Reset:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "reset")),
	Retry:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "retry")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Focus:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "results")),
	Debug:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
}
