package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sebastiantruijens/cinemadiary/internal/movie"
	"github.com/sebastiantruijens/cinemadiary/internal/omdb"
	"github.com/sebastiantruijens/cinemadiary/internal/watched"
)

// splitWidth is the narrowest terminal that shows both panes side by side.
const splitWidth = 100

// View renders the current UI
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.navView())
	sb.WriteString("\n")
	sb.WriteString(m.searchView())
	sb.WriteString("\n")
	sb.WriteString(m.bodyView())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.helpKeys()))
	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(mutedTextStyle.Render(m.status))
	}

	return lipgloss.NewStyle().
		MaxWidth(m.width).
		MaxHeight(m.height).
		Render(sb.String())
}

func (m Model) navView() string {
	logo := titleStyle.Render("🍿 " + appTitle)

	searchTab, watchTab := inactiveTabStyle, inactiveTabStyle
	if m.focus == focusWatched {
		watchTab = activeTabStyle
	} else {
		searchTab = activeTabStyle
	}
	tabs := searchTab.Render("Search") + "  " +
		watchTab.Render(fmt.Sprintf("Watchlist (%d)", m.store.Len()))

	gap := max(m.width-lipgloss.Width(logo)-lipgloss.Width(tabs)-2, 2)
	bar := logo + strings.Repeat(" ", gap) + tabs

	return navStyle.Width(max(m.width-2, 0)).Render(bar) + "\n" +
		mutedTextStyle.Render("Find a movie, rate it and keep track of what you have watched.")
}

func (m Model) searchView() string {
	style := inputStyle
	if m.focus == focusSearch {
		style = focusedInputStyle
	}
	input := style.Render(m.textInput.View())

	var found string
	if !m.search.TooShort() && !m.search.Loading() && m.search.Err() == nil {
		found = normalTextStyle.Render(fmt.Sprintf("Found %d results", len(m.search.Movies())))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, input, "  ", found)
}

func (m Model) bodyView() string {
	left, right := m.paneWidths()
	height := m.bodyHeight()

	leftStyle, rightStyle := paneStyle, paneStyle
	if m.focus == focusWatched {
		rightStyle = focusedPaneStyle
	} else if m.focus == focusResults {
		leftStyle = focusedPaneStyle
	}

	if right == 0 {
		if m.focus == focusWatched {
			return rightStyle.Width(left - 2).Height(height).Render(m.watchedView(left - 4))
		}
		return leftStyle.Width(left - 2).Height(height).Render(m.resultsView())
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Width(left-2).Height(height).Render(m.resultsView()),
		rightStyle.Width(right-2).Height(height).Render(m.watchedView(right-4)),
	)
}

// paneWidths returns the outer widths of the two panes. The right width is
// zero on narrow terminals, where only the focused pane is shown.
func (m Model) paneWidths() (int, int) {
	if m.width < splitWidth {
		return m.width, 0
	}
	left := m.width * 3 / 5
	return left, m.width - left
}

func (m Model) bodyHeight() int {
	// nav, hero, search box, help and borders
	return max(m.height-11, 5)
}

func (m Model) resultsView() string {
	var sb strings.Builder

	switch {
	case m.detailLoading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(normalTextStyle.Render("Loading movie details..."))

	case m.detailErr != nil:
		sb.WriteString(errorStyle.Render("⚠️ " + omdb.UserMessage(m.detailErr)))
		sb.WriteString("\n\n")
		sb.WriteString(mutedTextStyle.Render("esc: back to results"))

	case m.detail != nil:
		sb.WriteString(m.viewport.View())

	case m.search.Loading():
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(normalTextStyle.Render("Looking for \"" + m.search.Query() + "\""))

	case m.search.Err() != nil:
		sb.WriteString(errorStyle.Render("⚠️ " + omdb.UserMessage(m.search.Err())))

	case m.search.TooShort():
		if m.search.Query() != "" {
			sb.WriteString(mutedTextStyle.Render(
				fmt.Sprintf("Type at least %d characters to search", m.search.MinLength())))
		} else {
			sb.WriteString(mutedTextStyle.Render("Start typing to search for a movie"))
		}

	case len(m.search.Movies()) == 0:
		sb.WriteString(mutedTextStyle.Render("No movies found"))

	default:
		sb.WriteString(subtitleStyle.Render("Search Results:"))
		sb.WriteString("\n")
		for i, r := range m.search.Movies() {
			item := fmt.Sprintf("%s (%s)", r.Title, r.Year)
			if i == m.cursor {
				sb.WriteString(highlightedTextStyle.Render("> " + item))
			} else {
				sb.WriteString(normalTextStyle.Render("  " + item))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// formatDetail renders the open movie for the viewport.
func (m Model) formatDetail() string {
	if m.detail == nil {
		return "No movie details available"
	}
	d := m.detail

	var sb strings.Builder

	sb.WriteString(titleStyle.Render(d.Title))
	sb.WriteString("\n")
	sb.WriteString(normalTextStyle.Render(orNA(d.Released) + " • " + orNA(d.Runtime)))
	sb.WriteString("\n")
	sb.WriteString(normalTextStyle.Render("⭐ " + movie.FormatRating(d.IMDbRating) + " IMDb rating"))
	sb.WriteString("\n")
	if d.Genre != "" {
		sb.WriteString(mutedTextStyle.Render(d.Genre))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if e, ok := m.store.Get(d.ID); ok {
		sb.WriteString(highlightedTextStyle.Render(
			fmt.Sprintf("You rated this movie %s ⭐", formatStars(e.UserRating))))
	} else {
		sb.WriteString(m.rating.View())
		if m.rating.Rating() > 0 {
			sb.WriteString("\n")
			sb.WriteString(mutedTextStyle.Render("a: + Add to list"))
		}
	}
	sb.WriteString("\n\n")

	width := m.viewport.Width - 4
	if m.poster != "" {
		width -= posterCols + 2
	}
	if width < 20 {
		width = 60
	}

	if d.Plot != "" {
		sb.WriteString(plotStyle.Render(wrapText(d.Plot, width)))
		sb.WriteString("\n\n")
	}

	for _, f := range []struct{ label, value string }{
		{"Starring", d.Actors},
		{"Directed by", d.Director},
		{"Written by", d.Writer},
		{"Language", d.Language},
		{"Country", d.Country},
		{"Awards", d.Awards},
		{"Box office", d.BoxOffice},
		{"Production", d.Production},
	} {
		if f.value == "" {
			continue
		}
		sb.WriteString(subtitleStyle.Render(f.label + ": "))
		sb.WriteString(normalTextStyle.Render(wrapText(f.value, max(width-len(f.label)-2, 10))))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(mutedTextStyle.Render(movie.IMDbURL(d.ID)))

	if m.poster == "" {
		return sb.String()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.poster, "  ", sb.String())
}

func (m Model) watchedView(width int) string {
	entries := m.store.List()
	sum := watched.Summarize(entries)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("🎬 The Watchlist Chronicles"))
	sb.WriteString("\n")
	sb.WriteString(normalTextStyle.Render(fmt.Sprintf("#️⃣ Watched %d movies", sum.Count)))
	sb.WriteString("\n")
	sb.WriteString(normalTextStyle.Render(fmt.Sprintf("⭐ %s  🌟 %s  ⏳ %s", sum.IMDb(), sum.User(), sum.Runtime())))
	sb.WriteString("\n\n")

	if len(entries) == 0 {
		sb.WriteString(mutedTextStyle.Render("Nothing here yet. Rate a movie to add it."))
		return sb.String()
	}

	for i, e := range entries {
		title := e.Title
		if e.Year != "" {
			title += " (" + e.Year + ")"
		}
		title = truncate(title, width-2)
		stats := fmt.Sprintf("⭐ %s  🌟 %s  ⏳ %s",
			movie.FormatRating(e.IMDbRating), formatStars(e.UserRating), formatRuntime(e.RuntimeMinutes))

		if m.focus == focusWatched && i == m.watchedCursor {
			sb.WriteString(highlightedTextStyle.Render("> " + title))
		} else {
			sb.WriteString(normalTextStyle.Render("  " + title))
		}
		sb.WriteString("\n")
		sb.WriteString(mutedTextStyle.Render("  " + stats))
		sb.WriteString("\n")
	}

	return sb.String()
}

// truncate cuts s to at most width terminal cells.
func truncate(s string, width int) string {
	if width < 4 {
		return s
	}
	return ansi.Truncate(s, width, "...")
}

func orNA(s string) string {
	if s == "" {
		return movie.NotAvailable
	}
	return s
}

func formatStars(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func formatRuntime(minutes int) string {
	if minutes <= 0 {
		return movie.NotAvailable
	}
	return fmt.Sprintf("%d min", minutes)
}

// wrapText wraps text to fit within a given width
func wrapText(text string, width int) string {
	if width <= 1 {
		return text
	}

	var result strings.Builder
	var lineLength int

	for _, word := range strings.Fields(text) {
		runes := []rune(word)

		// Break words that cannot fit on a line of their own.
		for len(runes) > width {
			if lineLength > 0 {
				result.WriteString("\n")
			}
			result.WriteString(string(runes[:width-1]) + "-\n")
			runes = runes[width-1:]
			lineLength = 0
		}

		switch {
		case lineLength == 0:
		case lineLength+1+len(runes) > width:
			result.WriteString("\n")
			lineLength = 0
		default:
			result.WriteString(" ")
			lineLength++
		}

		result.WriteString(string(runes))
		lineLength += len(runes)
	}

	return result.String()
}
