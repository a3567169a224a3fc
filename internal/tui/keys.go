package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the editor bindings. It satisfies help.KeyMap.
type KeyMap struct {
	Left       key.Binding
	Right      key.Binding
	NextClip   key.Binding
	PrevClip   key.Binding
	Split      key.Binding
	TrimIn     key.Binding
	TrimOut    key.Binding
	Remove     key.Binding
	RippleDel  key.Binding
	Transition key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Undo       key.Binding
	Redo       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard editor bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "playhead back")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "playhead forward")),
		NextClip:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next clip")),
		PrevClip:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous clip")),
		Split:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "split at playhead")),
		TrimIn:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "ripple trim shorter")),
		TrimOut:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "ripple trim longer")),
		Remove:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove clip")),
		RippleDel:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "ripple delete")),
		Transition: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "add transition")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		Undo:       key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		Redo:       key.NewBinding(key.WithKeys("r", "ctrl+y"), key.WithHelp("r", "redo")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextClip, k.Split, k.TrimOut, k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.NextClip, k.PrevClip},
		{k.Split, k.TrimIn, k.TrimOut, k.Transition},
		{k.Remove, k.RippleDel, k.ZoomIn, k.ZoomOut},
		{k.Undo, k.Redo, k.Help, k.Quit},
	}
}
