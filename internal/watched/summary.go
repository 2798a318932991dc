package watched

import (
	"fmt"
	"math"
)

// Summary aggregates the watched list for the summary panel.
type Summary struct {
	Count         int
	AvgIMDbRating float64
	AvgUserRating float64
	AvgRuntime    float64
}

// Summarize computes unweighted means over the entries that carry each
// value. Zero marks an unknown rating or runtime and is left out. An empty
// list summarises to zeros.
func Summarize(entries []Entry) Summary {
	var imdb, user, runtime mean
	for _, e := range entries {
		imdb.add(e.IMDbRating)
		user.add(e.UserRating)
		runtime.add(float64(e.RuntimeMinutes))
	}
	return Summary{
		Count:         len(entries),
		AvgIMDbRating: imdb.value(),
		AvgUserRating: user.value(),
		AvgRuntime:    runtime.value(),
	}
}

// IMDb renders the average IMDb rating with two decimals.
func (s Summary) IMDb() string { return fmt.Sprintf("%.2f", s.AvgIMDbRating) }

// User renders the average user rating with two decimals.
func (s Summary) User() string { return fmt.Sprintf("%.2f", s.AvgUserRating) }

// Runtime renders the average runtime rounded to whole minutes.
func (s Summary) Runtime() string {
	return fmt.Sprintf("%d min", int(math.Round(s.AvgRuntime)))
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
