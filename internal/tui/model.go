// Package tui is the terminal front end: search field, results, movie
// detail with rating, and the watched list with its summary.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sebastiantruijens/cinemadiary/internal/movie"
	"github.com/sebastiantruijens/cinemadiary/internal/omdb"
	"github.com/sebastiantruijens/cinemadiary/internal/search"
	"github.com/sebastiantruijens/cinemadiary/internal/selection"
	"github.com/sebastiantruijens/cinemadiary/internal/starrating"
	"github.com/sebastiantruijens/cinemadiary/internal/watched"
)

const (
	appTitle = "CinemaDiary"

	posterCols = 24
	posterRows = 18
)

// Lookup is the remote movie database.
type Lookup interface {
	SearchByTitle(ctx context.Context, text string) ([]movie.SearchResult, error)
	FetchDetail(ctx context.Context, id string) (movie.Detail, error)
}

// PosterRenderer turns a poster URL into terminal art.
type PosterRenderer interface {
	Render(ctx context.Context, url string, cols, rows int) (string, error)
}

// Options wires the model to its collaborators.
type Options struct {
	Lookup Lookup
	Store  *watched.Store
	// Posters is optional; nil disables poster art.
	Posters        PosterRenderer
	Debounce       time.Duration
	MinQueryLength int
	Logger         *slog.Logger
	// OpenURL defaults to the system browser.
	OpenURL func(string) error
}

type focus int

const (
	focusSearch focus = iota
	focusResults
	focusWatched
)

// Model represents the application state
type Model struct {
	lookup   Lookup
	store    *watched.Store
	posters  PosterRenderer
	debounce time.Duration
	openURL  func(string) error
	log      *slog.Logger

	keys      keyMap
	help      help.Model
	textInput textinput.Model
	spinner   spinner.Model
	viewport  viewport.Model
	rating    starrating.Model

	search       *search.Controller
	selection    selection.State
	cancelSearch context.CancelFunc
	cancelDetail context.CancelFunc

	focus         focus
	cursor        int
	watchedCursor int

	detail        *movie.Detail
	detailLoading bool
	detailErr     error
	poster        string

	status string
	width  int
	height int
}

// New creates the application model
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search movies..."
	ti.Prompt = "🔍 "
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	// Alt+Backspace deletes the previous word.
	ti.KeyMap.DeleteWordBackward = key.NewBinding(
		key.WithKeys("alt+backspace", "ctrl+w"),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	vp := viewport.New(80, 20)

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = openBrowser
	}

	return Model{
		lookup:    opts.Lookup,
		store:     opts.Store,
		posters:   opts.Posters,
		debounce:  opts.Debounce,
		openURL:   openURL,
		log:       logger.With("component", "tui"),
		keys:      defaultKeyMap(),
		help:      help.New(),
		textInput: ti,
		spinner:   sp,
		viewport:  vp,
		rating:    starrating.New(starrating.DefaultMax),
		search:    search.New(opts.MinQueryLength),
		focus:     focusSearch,
		width:     80,
		height:    24,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle(appTitle))
}

// Update handles messages and user input
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status = ""
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if m.detail != nil {
			m.viewport.SetContent(m.formatDetail())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.search.Loading() && !m.detailLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case debounceMsg:
		cmd := m.fireSearch(msg.seq)
		return m, cmd

	case searchResultsMsg:
		if omdb.IsCanceled(msg.err) {
			return m, nil
		}
		if !m.search.Resolve(msg.token, msg.results, msg.err) {
			m.log.Debug("dropping stale search results", "token", msg.token)
			return m, nil
		}
		m.cursor = clamp(m.cursor, len(m.search.Movies()))
		if msg.err != nil {
			m.log.Warn("search failed", "query", m.search.Query(), "error", msg.err)
		}
		return m, nil

	case detailMsg:
		return m.applyDetail(msg)

	case posterMsg:
		if !m.selection.Accept(msg.id, msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			m.log.Debug("poster unavailable", "id", msg.id, "error", msg.err)
			return m, nil
		}
		m.poster = msg.art
		if m.detail != nil {
			m.viewport.SetContent(m.formatDetail())
		}
		return m, nil

	case starrating.ChangedMsg:
		m.log.Debug("rating changed", "rating", msg.Rating, "decisions", msg.Decisions)
		return m, nil

	case openBrowserMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("failed to open browser: %v", msg.err)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		return m.quit()
	}

	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Focus):
		return m.focusInput()
	case key.Matches(msg, m.keys.Switch):
		if m.focus == focusWatched {
			m.focus = focusResults
		} else {
			m.focus = focusWatched
			m.watchedCursor = clamp(m.watchedCursor, m.store.Len())
		}
		return m, nil
	}

	if m.focus == focusWatched {
		return m.handleWatchedKey(msg)
	}
	if m.detailOpen() {
		return m.handleDetailKey(msg)
	}
	return m.handleResultsKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Switch):
		m.textInput.Blur()
		m.focus = focusWatched
		return m, nil
	case key.Matches(msg, m.keys.Blur):
		m.textInput.Blur()
		m.focus = focusResults
		return m, nil
	}

	before := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() == before {
		return m, cmd
	}
	searchCmd := m.queryChanged(m.textInput.Value())
	return m, tea.Batch(cmd, searchCmd)
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	movies := m.search.Movies()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(movies)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		if len(movies) > 0 {
			return m.selectMovie(movies[m.cursor].ID)
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		cmd := m.closeDetail()
		return m, cmd
	case key.Matches(msg, m.keys.Open):
		id, _ := m.selection.Open()
		open := m.openURL
		return m, func() tea.Msg {
			return openBrowserMsg{err: open(movie.IMDbURL(id))}
		}
	case key.Matches(msg, m.keys.Add):
		if m.canAdd() {
			return m.addWatched()
		}
		return m, nil
	case key.Matches(msg, m.keys.Scroll):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.detail == nil || m.store.Contains(m.detail.ID) {
		return m, nil
	}
	var cmd tea.Cmd
	m.rating, cmd = m.rating.Update(msg)
	m.viewport.SetContent(m.formatDetail())
	return m, cmd
}

func (m Model) handleWatchedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.store.List()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.watchedCursor > 0 {
			m.watchedCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.watchedCursor < len(entries)-1 {
			m.watchedCursor++
		}
	case key.Matches(msg, m.keys.Delete):
		if len(entries) == 0 {
			return m, nil
		}
		e := entries[clamp(m.watchedCursor, len(entries))]
		if _, err := m.store.Remove(e.ID); err != nil {
			m.log.Error("remove from watched list failed", "id", e.ID, "error", err)
			m.status = fmt.Sprintf("could not remove %s: %v", e.Title, err)
			return m, nil
		}
		m.watchedCursor = clamp(m.watchedCursor, m.store.Len())
		if m.detail != nil && m.detail.ID == e.ID {
			m.viewport.SetContent(m.formatDetail())
		}
	}
	return m, nil
}

func (m Model) focusInput() (tea.Model, tea.Cmd) {
	m.focus = focusSearch
	m.textInput.Reset()
	m.search.Clear()
	m.cursor = 0
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}
	return m, m.textInput.Focus()
}

// queryChanged records the new query and schedules the lookup after the
// debounce interval.
func (m *Model) queryChanged(q string) tea.Cmd {
	seq := m.search.SetQuery(q)
	if m.cancelSearch != nil {
		m.cancelSearch()
		m.cancelSearch = nil
	}
	if m.search.TooShort() {
		m.cursor = 0
		return nil
	}
	if m.debounce <= 0 {
		return m.fireSearch(seq)
	}
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m *Model) fireSearch(seq uint64) tea.Cmd {
	req, ok := m.search.Fire(seq)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelSearch = cancel
	m.cursor = 0
	m.log.Info("searching", "query", req.Query, "token", req.Token)

	// A new search closes the open movie.
	closeCmd := m.closeDetail()

	lookup := m.lookup
	return tea.Batch(
		m.spinner.Tick,
		closeCmd,
		func() tea.Msg {
			results, err := lookup.SearchByTitle(ctx, req.Query)
			return searchResultsMsg{token: req.Token, results: results, err: err}
		},
	)
}

func (m Model) selectMovie(id string) (tea.Model, tea.Cmd) {
	if m.cancelDetail != nil {
		m.cancelDetail()
		m.cancelDetail = nil
	}
	m.resetDetail()

	if !m.selection.Select(id) {
		m.log.Debug("movie deselected", "id", id)
		return m, tea.SetWindowTitle(appTitle)
	}

	m.log.Info("movie selected", "id", id)
	m.detailLoading = true
	gen := m.selection.Generation()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDetail = cancel

	lookup := m.lookup
	return m, tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			d, err := lookup.FetchDetail(ctx, id)
			return detailMsg{id: id, gen: gen, detail: d, err: err}
		},
	)
}

func (m Model) applyDetail(msg detailMsg) (tea.Model, tea.Cmd) {
	if !m.selection.Accept(msg.id, msg.gen) {
		m.log.Debug("dropping stale detail", "id", msg.id, "gen", msg.gen)
		return m, nil
	}
	m.detailLoading = false

	if msg.err != nil {
		if omdb.IsCanceled(msg.err) {
			return m, nil
		}
		if omdb.IsNotFound(msg.err) {
			m.log.Info("movie not found", "id", msg.id)
		} else {
			m.log.Warn("detail fetch failed", "id", msg.id, "error", msg.err)
		}
		m.detailErr = msg.err
		return m, nil
	}

	d := msg.detail
	m.detail = &d
	m.viewport.GotoTop()
	m.viewport.SetContent(m.formatDetail())

	cmds := []tea.Cmd{tea.SetWindowTitle("Movie | " + d.Title)}
	if m.posters != nil && d.PosterURL != "" {
		posters, id, gen, url := m.posters, msg.id, msg.gen, d.PosterURL
		ctx := context.Background()
		cmds = append(cmds, func() tea.Msg {
			art, err := posters.Render(ctx, url, posterCols, posterRows)
			return posterMsg{id: id, gen: gen, art: art, err: err}
		})
	}
	return m, tea.Batch(cmds...)
}

// closeDetail returns the selection to Closed and drops the detail state.
func (m *Model) closeDetail() tea.Cmd {
	_, wasOpen := m.selection.Open()
	if m.cancelDetail != nil {
		m.cancelDetail()
		m.cancelDetail = nil
	}
	m.selection.Close()
	m.resetDetail()
	if !wasOpen {
		return nil
	}
	return tea.SetWindowTitle(appTitle)
}

func (m *Model) resetDetail() {
	m.detail = nil
	m.detailLoading = false
	m.detailErr = nil
	m.poster = ""
	m.rating.Reset()
}

func (m Model) detailOpen() bool {
	_, open := m.selection.Open()
	return open
}

func (m Model) canAdd() bool {
	return m.detail != nil && m.rating.Rating() > 0 && !m.store.Contains(m.detail.ID)
}

func (m Model) addWatched() (tea.Model, tea.Cmd) {
	entry := watched.NewEntry(*m.detail, m.rating.Rating(), m.rating.Decisions())
	if err := m.store.Add(entry); err != nil {
		if errors.Is(err, watched.ErrAlreadyWatched) {
			m.status = fmt.Sprintf("%s is already on your list", entry.Title)
		} else {
			m.log.Error("add to watched list failed", "id", entry.ID, "error", err)
			m.status = fmt.Sprintf("could not save %s: %v", entry.Title, err)
		}
		return m, nil
	}

	m.status = fmt.Sprintf("Added %s to your list", entry.Title)
	cmd := m.closeDetail()
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancelSearch != nil {
		m.cancelSearch()
	}
	if m.cancelDetail != nil {
		m.cancelDetail()
	}
	return m, tea.Quit
}

func (m *Model) layout() {
	left, _ := m.paneWidths()
	m.viewport.Width = max(left-4, 20)
	m.viewport.Height = max(m.bodyHeight()-2, 5)
	m.textInput.Width = max(min(m.width-12, 60), 10)
	m.help.Width = m.width
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
