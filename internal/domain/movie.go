package domain

import (
	"regexp"
	"strings"
	"time"
)

// Movie represents a suggested title in the shared catalog.
type Movie struct {
	ID            int64
	ExternalID    string
	Title         string
	Year          int
	Genre         string
	Description   string
	Poster        string
	Rating        string
	LikesCount    int
	DislikesCount int
	SuggesterID   int64
	CreatedAt     time.Time
}

// NewMovie carries the attributes a caller supplies when suggesting a movie.
// Counters are not among them; they only move with ledger entries.
type NewMovie struct {
	ExternalID  string
	Title       string
	Year        int
	Genre       string
	Description string
	Poster      string
	Rating      string
}

// Voter is the public view of a user who rated a movie.
type Voter struct {
	Name string `json:"name"`
}

// MovieWithVoters is a movie enriched with the names of everyone who rated it.
type MovieWithVoters struct {
	Movie
	LikedBy    []Voter
	DislikedBy []Voter
}

// HasGenre reports whether the movie's comma separated genre label mentions genre.
// An empty filter or "all" matches everything.
func (m Movie) HasGenre(genre string) bool {
	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" || genre == "all" {
		return true
	}
	return strings.Contains(strings.ToLower(m.Genre), genre)
}

// FilterByGenre keeps the movies whose genre label matches genre.
func FilterByGenre(movies []MovieWithVoters, genre string) []MovieWithVoters {
	out := make([]MovieWithVoters, 0, len(movies))
	for _, m := range movies {
		if m.HasGenre(genre) {
			out = append(out, m)
		}
	}
	return out
}

var imdbTitlePattern = regexp.MustCompile(`(?i)/title/(tt\d+)`)

// ParseIMDbID extracts the tt-prefixed identifier from an IMDb title URL.
func ParseIMDbID(rawURL string) (string, error) {
	match := imdbTitlePattern.FindStringSubmatch(rawURL)
	if match == nil {
		return "", InvalidInputf("invalid IMDb URL %q, expected something like https://www.imdb.com/title/tt0062455", rawURL)
	}
	return NormalizeExternalID(match[1]), nil
}

// NormalizeExternalID returns the canonical form of an IMDb id: trimmed and
// lower-cased, so TT0042 and tt0042 name the same movie.
func NormalizeExternalID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
