package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Mark        key.Binding
	Clear       key.Binding
	Up          key.Binding
	Down        key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Restart     key.Binding
	Jump        key.Binding
	Mode        key.Binding
	Save        key.Binding
	Reload      key.Binding
	Yank        key.Binding
	Help        key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Mark: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "mark line"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear mark"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "line up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "line down"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "seek back"),
		),
		SeekForward: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "seek forward"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart track"),
		),
		Jump: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "jump to playing line"),
		),
		Mode: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit/sync mode"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Reload: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "reload file"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy line"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "save and quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit without saving"),
		),
	}
}

// ShortHelp is the single-row hint shown at the bottom of the screen.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mark, k.Clear, k.Mode, k.Save, k.Help, k.Quit}
}

// FullHelp is the expanded view toggled with "?".
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Mark, k.Clear, k.Up, k.Down},
		{k.SeekBack, k.SeekForward, k.Restart, k.Jump},
		{k.Mode, k.Save, k.Reload, k.Yank},
		{k.Help, k.Quit, k.ForceQuit},
	}
}
