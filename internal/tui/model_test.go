package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sebastiantruijens/cinemadiary/internal/movie"
	"github.com/sebastiantruijens/cinemadiary/internal/omdb"
	"github.com/sebastiantruijens/cinemadiary/internal/watched"
)

type mockLookup struct {
	mock.Mock
}

func (l *mockLookup) SearchByTitle(ctx context.Context, text string) ([]movie.SearchResult, error) {
	args := l.Called(ctx, text)
	res, _ := args.Get(0).([]movie.SearchResult)
	return res, args.Error(1)
}

func (l *mockLookup) FetchDetail(ctx context.Context, id string) (movie.Detail, error) {
	args := l.Called(ctx, id)
	d, _ := args.Get(0).(movie.Detail)
	return d, args.Error(1)
}

var matrixResults = []movie.SearchResult{
	{ID: "tt0133093", Title: "The Matrix", Year: "1999", Type: "movie"},
	{ID: "tt0234215", Title: "The Matrix Reloaded", Year: "2003", Type: "movie"},
	{ID: "tt0242653", Title: "The Matrix Revolutions", Year: "2003", Type: "movie"},
}

var matrixDetail = movie.Detail{
	ID:             "tt0133093",
	Title:          "The Matrix",
	Year:           "1999",
	Runtime:        "136 min",
	RuntimeMinutes: 136,
	IMDbRating:     8.7,
	Released:       "31 Mar 1999",
	Genre:          "Action, Sci-Fi",
	Plot:           "A computer hacker learns about the true nature of reality.",
	Director:       "Lana Wachowski, Lilly Wachowski",
}

func newStore(t *testing.T) *watched.Store {
	t.Helper()
	st, err := watched.NewFSStorage(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	return watched.Open(st, watched.DefaultKey, nil)
}

func newTestModel(t *testing.T, lookup Lookup, store *watched.Store) Model {
	t.Helper()
	m := New(Options{
		Lookup:  lookup,
		Store:   store,
		OpenURL: func(string) error { return nil },
	})
	m.textInput.Cursor.SetMode(cursor.CursorStatic)
	return m
}

// collect runs cmd and flattens batches into the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// send delivers msg and then feeds back every lookup result it triggers.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, out := range collect(cmd) {
		switch out.(type) {
		case debounceMsg, searchResultsMsg, detailMsg, posterMsg, openBrowserMsg:
			m = send(t, m, out)
		}
	}
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSearchRateAddAndRemove(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrix").Return(matrixResults, nil).Once()
	lookup.On("FetchDetail", mock.Anything, "tt0133093").Return(matrixDetail, nil).Once()

	store := newStore(t)
	m := newTestModel(t, lookup, store)

	m = send(t, m, keyPress("Matrix"))
	require.Len(t, m.search.Movies(), 3)
	assert.False(t, m.search.Loading())
	assert.Contains(t, m.View(), "Found 3 results")

	m = send(t, m, keyPress("enter")) // leave the input
	m = send(t, m, keyPress("enter")) // open the first result
	require.NotNil(t, m.detail)
	assert.Equal(t, "tt0133093", m.detail.ID)

	// Without a rating the movie cannot be added.
	m = send(t, m, keyPress("a"))
	assert.Equal(t, 0, store.Len())

	m = send(t, m, keyPress("9"))
	assert.Equal(t, 9.0, m.rating.Rating())
	m = send(t, m, keyPress("a"))

	require.Equal(t, 1, store.Len())
	e, ok := store.Get("tt0133093")
	require.True(t, ok)
	assert.Equal(t, 9.0, e.UserRating)
	assert.Equal(t, 136, e.RuntimeMinutes)
	assert.Equal(t, 8.7, e.IMDbRating)
	assert.Equal(t, 1, e.RatingDecisions)
	assert.False(t, m.detailOpen())

	m = send(t, m, keyPress("tab"))
	assert.Equal(t, focusWatched, m.focus)
	m = send(t, m, keyPress("d"))
	assert.Equal(t, 0, store.Len())

	lookup.AssertExpectations(t)
}

func TestDebouncedSearch(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrixx").Return(matrixResults[:1], nil).Once()

	m := New(Options{
		Lookup:   lookup,
		Store:    newStore(t),
		Debounce: 10 * time.Millisecond,
		OpenURL:  func(string) error { return nil },
	})
	m.textInput.Cursor.SetMode(cursor.CursorStatic)

	next, first := m.Update(keyPress("Matrix"))
	m = next.(Model)
	assert.False(t, m.search.Loading())

	m = send(t, m, keyPress("x"))
	require.Len(t, m.search.Movies(), 1)

	// The timer of the earlier keystroke fires after a newer one.
	var fired bool
	for _, msg := range collect(first) {
		if _, ok := msg.(debounceMsg); ok {
			fired = true
			m = send(t, m, msg)
		}
	}
	assert.True(t, fired)
	assert.Len(t, m.search.Movies(), 1)
	assert.False(t, m.search.Loading())

	lookup.AssertExpectations(t)
	lookup.AssertNotCalled(t, "SearchByTitle", mock.Anything, "Matrix")
}

func TestNoResultsCounter(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Zzyzx").Return([]movie.SearchResult{}, nil)

	m := newTestModel(t, lookup, newStore(t))
	m = send(t, m, keyPress("Zzyzx"))

	view := m.View()
	assert.Contains(t, view, "Found 0 results")
	assert.Contains(t, view, "No movies found")
	assert.NotContains(t, view, "⚠️")
}

func TestShortQueryIssuesNoLookup(t *testing.T) {
	lookup := new(mockLookup)
	m := newTestModel(t, lookup, newStore(t))

	m = send(t, m, keyPress("Ma"))
	assert.Equal(t, "Ma", m.search.Query())
	assert.Empty(t, m.search.Movies())
	assert.False(t, m.search.Loading())
	assert.Nil(t, m.search.Err())

	lookup.AssertNotCalled(t, "SearchByTitle", mock.Anything, mock.Anything)
}

func TestSearchErrorIsShown(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrix").
		Return(nil, &omdb.NetworkError{Op: "search", Err: errors.New("connection refused")})

	m := newTestModel(t, lookup, newStore(t))
	m = send(t, m, keyPress("Matrix"))

	assert.Empty(t, m.search.Movies())
	assert.Error(t, m.search.Err())
	assert.Contains(t, m.View(), "Something went wrong with fetching movies")
}

func TestRemoteErrorMessageIsShown(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrix").
		Return(nil, &omdb.RemoteError{Op: "search", Message: "Invalid API key!"})

	m := newTestModel(t, lookup, newStore(t))
	m = send(t, m, keyPress("Matrix"))

	assert.Contains(t, m.View(), "Invalid API key!")
}

func TestStaleDetailIsDiscarded(t *testing.T) {
	reloaded := movie.Detail{ID: "tt0234215", Title: "The Matrix Reloaded", Year: "2003"}

	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrix").Return(matrixResults, nil)
	lookup.On("FetchDetail", mock.Anything, "tt0133093").Return(matrixDetail, nil)
	lookup.On("FetchDetail", mock.Anything, "tt0234215").Return(reloaded, nil)

	m := newTestModel(t, lookup, newStore(t))
	m = send(t, m, keyPress("Matrix"))
	m = send(t, m, keyPress("enter"))

	// Open the first movie but hold its response back.
	next, first := m.Update(keyPress("enter"))
	m = next.(Model)
	assert.True(t, m.detailLoading)

	m = send(t, m, keyPress("esc"))
	m = send(t, m, keyPress("down"))
	m = send(t, m, keyPress("enter"))
	require.NotNil(t, m.detail)
	require.Equal(t, "tt0234215", m.detail.ID)

	for _, msg := range collect(first) {
		if _, ok := msg.(detailMsg); ok {
			m = send(t, m, msg)
		}
	}
	assert.Equal(t, "tt0234215", m.detail.ID)
	assert.Equal(t, "The Matrix Reloaded", m.detail.Title)
}

func TestStaleSearchIsDiscarded(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrix").Return(matrixResults, nil)
	lookup.On("SearchByTitle", mock.Anything, "Matrixx").Return([]movie.SearchResult{}, nil)

	m := newTestModel(t, lookup, newStore(t))
	next, first := m.Update(keyPress("Matrix"))
	m = next.(Model)
	m = send(t, m, keyPress("x"))
	assert.Empty(t, m.search.Movies())

	for _, msg := range collect(first) {
		if _, ok := msg.(searchResultsMsg); ok {
			m = send(t, m, msg)
		}
	}
	assert.Empty(t, m.search.Movies())
	assert.Equal(t, "Matrixx", m.search.Query())
}

func TestWatchedMovieShowsPreviousRating(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Add(watched.NewEntry(matrixDetail, 9, 1)))

	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrix").Return(matrixResults, nil)
	lookup.On("FetchDetail", mock.Anything, "tt0133093").Return(matrixDetail, nil)

	m := newTestModel(t, lookup, store)
	m = send(t, m, keyPress("Matrix"))
	m = send(t, m, keyPress("enter"))
	m = send(t, m, keyPress("enter"))

	detail := m.formatDetail()
	assert.Contains(t, detail, "You rated this movie 9")
	assert.NotContains(t, detail, "Add to list")

	// Rating keys do nothing for a watched movie.
	m = send(t, m, keyPress("5"))
	assert.Zero(t, m.rating.Rating())
	m = send(t, m, keyPress("a"))
	assert.Equal(t, 1, store.Len())
}

func TestNewSearchClosesDetail(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, mock.Anything).Return(matrixResults, nil)
	lookup.On("FetchDetail", mock.Anything, "tt0133093").Return(matrixDetail, nil)

	m := newTestModel(t, lookup, newStore(t))
	m = send(t, m, keyPress("Matrix"))
	m = send(t, m, keyPress("enter"))
	m = send(t, m, keyPress("enter"))
	require.True(t, m.detailOpen())

	m = send(t, m, keyPress("/"))
	assert.Equal(t, focusSearch, m.focus)
	assert.Empty(t, m.textInput.Value())
	assert.Empty(t, m.search.Movies())

	m = send(t, m, keyPress("Neo"))
	assert.False(t, m.detailOpen())
	assert.Nil(t, m.detail)
}

func TestDetailErrorIsShown(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("SearchByTitle", mock.Anything, "Matrix").Return(matrixResults, nil)
	lookup.On("FetchDetail", mock.Anything, "tt0133093").
		Return(nil, &omdb.RemoteError{Op: "detail", Message: "Incorrect IMDb ID.", Err: omdb.ErrNotFound})

	m := newTestModel(t, lookup, newStore(t))
	m = send(t, m, keyPress("Matrix"))
	m = send(t, m, keyPress("enter"))
	m = send(t, m, keyPress("enter"))

	assert.Nil(t, m.detail)
	assert.Contains(t, m.View(), "Incorrect IMDb ID.")

	m = send(t, m, keyPress("esc"))
	assert.False(t, m.detailOpen())
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, new(mockLookup), newStore(t))

	// q is text while the input has focus.
	next, _ := m.Update(keyPress("q"))
	m = next.(Model)
	assert.Equal(t, "q", m.textInput.Value())

	m = send(t, m, keyPress("esc"))
	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestWatchedViewTruncatesWideTitles(t *testing.T) {
	store := newStore(t)
	for _, n := range []int{14, 23, 50, 57} {
		title := strings.Repeat("千", n)
		require.NoError(t, store.Add(watched.Entry{ID: title, Title: title, Year: "2001", UserRating: 8}))
	}
	m := newTestModel(t, new(mockLookup), store)

	for _, width := range []int{36, 76} {
		var out string
		require.NotPanics(t, func() { out = m.watchedView(width) })
		assert.NotContains(t, out, "\x00")
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "千") {
				assert.LessOrEqual(t, lipgloss.Width(line), width)
			}
		}
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "The Matrix (1999)", truncate("The Matrix (1999)", 20))
	assert.Equal(t, "The Mat...", truncate("The Matrix (1999)", 10))
	assert.Equal(t, "千千千...", truncate(strings.Repeat("千", 10), 9))
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{"fits", "a short line", 20, "a short line"},
		{"wraps", "one two three four", 9, "one two\nthree\nfour"},
		{"long word", "abcdefghij", 5, "abcd-\nefgh-\nij"},
		{"no width", "left as is", 0, "left as is"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapText(tt.text, tt.width))
		})
	}
}
