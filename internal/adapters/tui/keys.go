package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap: les flèches actionnent le bouton du même côté, leur sens dépend
// donc de la direction de lecture.
type KeyMap struct {
	Left        key.Binding
	Right       key.Binding
	PrevChapter key.Binding
	NextChapter key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Jump        key.Binding
	Chapters    key.Binding
	Direction   key.Binding
	Mode        key.Binding
	Dismiss     key.Binding
	Help        key.Binding
	Quit        key.Binding
	Enter       key.Binding
	Escape      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		PrevChapter: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "left chapter"),
		),
		NextChapter: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "right chapter"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "zoom out"),
		),
		Jump: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to page"),
		),
		Chapters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chapters"),
		),
		Direction: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "flip direction"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "paged/strip"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Jump, k.Chapters, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.PrevChapter, k.NextChapter},
		{k.ScrollUp, k.ScrollDown, k.ZoomIn, k.ZoomOut},
		{k.Jump, k.Chapters, k.Direction, k.Mode},
		{k.Dismiss, k.Help, k.Quit},
	}
}
