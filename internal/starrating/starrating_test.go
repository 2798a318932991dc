package starrating

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDigitsSetWholeStars(t *testing.T) {
	m := New(10)

	m, cmd := m.Update(runes("9"))
	require.NotNil(t, cmd)
	assert.Equal(t, ChangedMsg{Rating: 9, Decisions: 1}, cmd())
	assert.Equal(t, 9.0, m.Rating())

	m, _ = m.Update(runes("0"))
	assert.Equal(t, 10.0, m.Rating())
}

func TestArrowsStepByHalves(t *testing.T) {
	m := New(10)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1.5, m.Rating())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1.0, m.Rating())
}

func TestRatingIsClamped(t *testing.T) {
	m := New(5)
	m, cmd := m.Update(runes("7"))
	assert.Nil(t, cmd)
	assert.Equal(t, 0.0, m.Rating())

	m.SetRating(5)
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd)
	assert.Equal(t, 5.0, m.Rating())

	m.SetRating(-3)
	assert.Equal(t, 0.0, m.Rating())
}

func TestDecisionsCountEachNewRating(t *testing.T) {
	m := New(10)
	m.SetRating(7)
	m.SetRating(7)
	m.SetRating(8)
	m.SetRating(0)
	m.SetRating(9)
	assert.Equal(t, 3, m.Decisions())

	m.Reset()
	assert.Equal(t, 0, m.Decisions())
	assert.Equal(t, 0.0, m.Rating())
}

func TestIgnoresOtherInput(t *testing.T) {
	m := New(10)
	m, cmd := m.Update(runes("x"))
	assert.Nil(t, cmd)
	m, cmd = m.Update(tea.WindowSizeMsg{Width: 10})
	assert.Nil(t, cmd)
	assert.Equal(t, 0.0, m.Rating())
}

func TestView(t *testing.T) {
	m := New(4)
	m.SetRating(2.5)
	view := m.View()
	assert.Equal(t, 2, strings.Count(view, fullStar))
	assert.Equal(t, 1, strings.Count(view, halfStar))
	assert.Equal(t, 1, strings.Count(view, emptyStar))
	assert.Contains(t, view, "2.5")
}
