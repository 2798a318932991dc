package watched

import (
	"strings"

	"github.com/sebastiantruijens/cinemadiary/internal/movie"
)

// Entry is a rated movie on the watched list.
type Entry struct {
	ID              string  `json:"imdbID"`
	Title           string  `json:"title"`
	PosterURL       string  `json:"poster"`
	Year            string  `json:"year"`
	IMDbRating      float64 `json:"imdbRating"`
	UserRating      float64 `json:"userRating"`
	RuntimeMinutes  int     `json:"runtime"`
	RatingDecisions int     `json:"countRatingDecisions"`
}

// NewEntry derives a watched entry from a fetched detail and the user's
// rating.
func NewEntry(d movie.Detail, userRating float64, decisions int) Entry {
	return Entry{
		ID:              d.ID,
		Title:           d.Title,
		PosterURL:       d.PosterURL,
		Year:            d.Year,
		IMDbRating:      d.IMDbRating,
		UserRating:      userRating,
		RuntimeMinutes:  d.RuntimeMinutes,
		RatingDecisions: decisions,
	}
}

func (e Entry) valid() bool {
	return strings.TrimSpace(e.ID) != ""
}
