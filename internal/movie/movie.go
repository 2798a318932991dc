package movie

import (
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is the placeholder OMDb uses for missing values.
const NotAvailable = "N/A"

// SearchResult represents a movie search result
type SearchResult struct {
	ID        string
	Title     string
	Year      string
	Type      string
	PosterURL string
}

// Detail represents a movie with its details
type Detail struct {
	ID             string
	Title          string
	Year           string
	PosterURL      string
	Runtime        string
	RuntimeMinutes int
	IMDbRating     float64
	Plot           string
	Released       string
	Actors         string
	Director       string
	Genre          string
	Language       string
	Country        string
	Writer         string
	Awards         string
	BoxOffice      string
	Production     string
}

// IMDbURL returns the public IMDb page for an id.
func IMDbURL(id string) string {
	return fmt.Sprintf("https://www.imdb.com/title/%s/", id)
}

// Value trims s and maps the OMDb "N/A" placeholder to an empty string.
func Value(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, NotAvailable) {
		return ""
	}
	return s
}

// ParseRuntime extracts whole minutes from values like "136 min".
// Unknown or malformed runtimes yield 0.
func ParseRuntime(s string) int {
	fields := strings.Fields(Value(s))
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseRating parses an IMDb rating such as "8.7". Unknown ratings yield 0.
func ParseRating(s string) float64 {
	v := Value(s)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// FormatRating renders a rating for display, "N/A" when unknown.
func FormatRating(r float64) string {
	if r <= 0 {
		return NotAvailable
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
