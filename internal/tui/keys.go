package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Focus     key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Blur      key.Binding
	Back      key.Binding
	Add       key.Binding
	Rate      key.Binding
	Open      key.Binding
	Scroll    key.Binding
	Delete    key.Binding
	Switch    key.Binding
	Quit      key.Binding
	Interrupt key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Focus:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Blur:      key.NewBinding(key.WithKeys("esc", "enter", "down"), key.WithHelp("esc", "results")),
		Back:      key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "close")),
		Add:       key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "add to list")),
		Rate:      key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9", "0", "left", "right"), key.WithHelp("1-0/←→", "rate")),
		Open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open IMDb")),
		Scroll:    key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll")),
		Delete:    key.NewBinding(key.WithKeys("d", "x", "delete"), key.WithHelp("d", "remove")),
		Switch:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "watchlist")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// bindings adapts a slice of bindings to help.KeyMap.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

// helpKeys lists the bindings that apply to the focused area.
func (m Model) helpKeys() bindings {
	k := m.keys
	switch {
	case m.focus == focusSearch:
		return bindings{k.Blur, k.Switch, k.Interrupt}
	case m.focus == focusWatched:
		back := key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "results"))
		return bindings{k.Up, k.Down, k.Delete, k.Focus, back, k.Quit}
	case m.detailOpen():
		b := bindings{k.Back, k.Scroll}
		if m.detail != nil && !m.store.Contains(m.detail.ID) {
			b = append(b, k.Rate)
			if m.rating.Rating() > 0 {
				b = append(b, k.Add)
			}
		}
		return append(b, k.Open, k.Quit)
	default:
		return bindings{k.Up, k.Down, k.Select, k.Focus, k.Switch, k.Quit}
	}
}
