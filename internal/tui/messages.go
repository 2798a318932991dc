package tui

import "github.com/sebastiantruijens/cinemadiary/internal/movie"

// Custom message types

// debounceMsg fires once the query has been idle for the debounce interval.
type debounceMsg struct {
	seq uint64
}

type searchResultsMsg struct {
	token   uint64
	results []movie.SearchResult
	err     error
}

type detailMsg struct {
	id     string
	gen    uint64
	detail movie.Detail
	err    error
}

type posterMsg struct {
	id  string
	gen uint64
	art string
	err error
}

type openBrowserMsg struct {
	err error
}
