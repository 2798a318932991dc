package omdb

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sebastiantruijens/cinemadiary/internal/movie"
)

// cleanText normalises an OMDb text field: "N/A" becomes empty, HTML
// entities are decoded, stray markup is dropped and whitespace collapsed.
func cleanText(s string) string {
	s = movie.Value(s)
	if s == "" {
		return ""
	}

	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			s = doc.Text()
		}
	}

	return strings.Join(strings.Fields(s), " ")
}
