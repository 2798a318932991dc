// Package starrating provides a reusable star rating input for bubbletea
// programs.
package starrating

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultMax = 10

	fullStar  = "★"
	halfStar  = "✬"
	emptyStar = "☆"
)

// ChangedMsg is emitted whenever the rating changes.
type ChangedMsg struct {
	Rating    float64
	Decisions int
}

// KeyMap defines the keys that step the rating by half a star.
type KeyMap struct {
	Increase key.Binding
	Decrease key.Binding
}

// DefaultKeyMap steps with the arrow keys or h/l.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Increase: key.NewBinding(key.WithKeys("right", "l", "+"), key.WithHelp("→", "more stars")),
		Decrease: key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←", "fewer stars")),
	}
}

// Model is the rating input. Digits set whole stars ("0" means 10); the
// KeyMap steps by halves.
type Model struct {
	Max    int
	KeyMap KeyMap

	FullStyle  lipgloss.Style
	EmptyStyle lipgloss.Style
	LabelStyle lipgloss.Style

	rating    float64
	decisions int
}

// New creates a rating input with maxStars stars.
func New(maxStars int) Model {
	if maxStars < 1 {
		maxStars = DefaultMax
	}
	return Model{
		Max:        maxStars,
		KeyMap:     DefaultKeyMap(),
		FullStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FCC419")),
		EmptyStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#564D4D")),
		LabelStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#FCC419")).Bold(true),
	}
}

// Rating returns the chosen rating, 0 when none has been chosen.
func (m Model) Rating() float64 { return m.rating }

// Decisions counts how many times the user settled on a new rating.
func (m Model) Decisions() int { return m.decisions }

// Reset clears the rating and the decision count.
func (m *Model) Reset() {
	m.rating = 0
	m.decisions = 0
}

// SetRating clamps r to [0, Max] in half-star steps and stores it. Each
// change to a new non-zero rating counts as one decision. It reports whether
// the rating changed.
func (m *Model) SetRating(r float64) bool {
	r = math.Round(r*2) / 2
	if r < 0 {
		r = 0
	}
	if r > float64(m.Max) {
		r = float64(m.Max)
	}
	if r == m.rating {
		return false
	}
	m.rating = r
	if r > 0 {
		m.decisions++
	}
	return true
}

// Update handles rating keys and emits a ChangedMsg when the rating moves.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	next := m.rating
	switch {
	case key.Matches(keyMsg, m.KeyMap.Increase):
		next += 0.5
	case key.Matches(keyMsg, m.KeyMap.Decrease):
		next -= 0.5
	default:
		n, isDigit := digit(keyMsg)
		if !isDigit || n > m.Max {
			return m, nil
		}
		next = float64(n)
	}

	if !m.SetRating(next) {
		return m, nil
	}
	changed := ChangedMsg{Rating: m.rating, Decisions: m.decisions}
	return m, func() tea.Msg { return changed }
}

func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '0' || r > '9' {
		return 0, false
	}
	if r == '0' {
		return 10, true
	}
	return int(r - '0'), true
}

// View renders the stars followed by the numeric rating.
func (m Model) View() string {
	var sb strings.Builder
	for i := 1; i <= m.Max; i++ {
		switch {
		case m.rating >= float64(i):
			sb.WriteString(m.FullStyle.Render(fullStar))
		case m.rating >= float64(i)-0.5:
			sb.WriteString(m.FullStyle.Render(halfStar))
		default:
			sb.WriteString(m.EmptyStyle.Render(emptyStar))
		}
	}
	if m.rating > 0 {
		sb.WriteString(" ")
		sb.WriteString(m.LabelStyle.Render(strconv.FormatFloat(m.rating, 'f', -1, 64)))
	}
	return sb.String()
}
