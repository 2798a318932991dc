// Package search owns the query text and the result list derived from it.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/sebastiantruijens/cinemadiary/internal/movie"
)

// DefaultMinLength is the shortest query that triggers a lookup.
const DefaultMinLength = 3

// Request is a lookup the caller should perform and report back through
// Resolve with the same Token.
type Request struct {
	Token uint64
	Query string
}

// Controller holds the query, its results and the lookup bookkeeping.
// Each keystroke bumps seq; each issued lookup bumps token. Only the
// outcome of the newest token is applied.
type Controller struct {
	minLength int

	query   string
	movies  []movie.SearchResult
	loading bool
	err     error

	seq   uint64
	token uint64
}

// New creates a controller. A minLength below 1 uses DefaultMinLength.
func New(minLength int) *Controller {
	if minLength < 1 {
		minLength = DefaultMinLength
	}
	return &Controller{minLength: minLength, movies: []movie.SearchResult{}}
}

// SetQuery records a new query text and returns the debounce sequence the
// caller should pass to Fire once the debounce interval has elapsed. Any
// lookup in flight is superseded. Queries below the minimum length clear the
// results without an error.
func (c *Controller) SetQuery(q string) uint64 {
	c.query = q
	c.seq++
	c.token++
	c.loading = false

	if c.TooShort() {
		c.movies = []movie.SearchResult{}
		c.err = nil
	}
	return c.seq
}

// Clear empties the query and the results.
func (c *Controller) Clear() {
	c.SetQuery("")
}

// TooShort reports whether the current query is below the minimum length.
func (c *Controller) TooShort() bool {
	return utf8.RuneCountInString(strings.TrimSpace(c.query)) < c.minLength
}

// Fire starts the lookup for seq. It returns false when a newer keystroke
// arrived in the meantime or the query is too short.
func (c *Controller) Fire(seq uint64) (Request, bool) {
	if seq != c.seq || c.TooShort() {
		return Request{}, false
	}
	c.token++
	c.loading = true
	c.err = nil
	return Request{Token: c.token, Query: strings.TrimSpace(c.query)}, true
}

// Resolve applies the outcome of the lookup issued under token. Outcomes of
// superseded lookups are dropped and false is returned.
func (c *Controller) Resolve(token uint64, movies []movie.SearchResult, err error) bool {
	if token != c.token || !c.loading {
		return false
	}
	c.loading = false
	if err != nil {
		c.err = err
		c.movies = []movie.SearchResult{}
		return true
	}
	c.err = nil
	if movies == nil {
		movies = []movie.SearchResult{}
	}
	c.movies = movies
	return true
}

// Query returns the current query text.
func (c *Controller) Query() string { return c.query }

// Movies returns the results of the last applied lookup, never nil.
func (c *Controller) Movies() []movie.SearchResult { return c.movies }

// Loading reports whether a lookup is in flight.
func (c *Controller) Loading() bool { return c.loading }

// Err returns the failure of the last applied lookup.
func (c *Controller) Err() error { return c.err }

// MinLength returns the shortest query that triggers a lookup.
func (c *Controller) MinLength() int { return c.minLength }
