package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayNameAndNickname(t *testing.T) {
	tests := []struct {
		first, last, username string
		wantName, wantNick    string
	}{
		{"Ann", "Lee", "annie", "Ann Lee", "annie"},
		{"Ann", "", "", "Ann", "Ann"},
		{"", "Lee", "", "Lee", "Lee"},
		{"  Mary Jane ", " Watson", "", "Mary Jane Watson", "Mary"},
		{"", "", "", "", DefaultNick},
		{"", "", "solo", "", "solo"},
	}
	for _, tt := range tests {
		t.Run(tt.wantName+"/"+tt.wantNick, func(t *testing.T) {
			name := DisplayName(tt.first, tt.last)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantNick, Nickname(tt.username, name))
		})
	}
}

func TestParseIMDbID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://www.imdb.com/title/tt0062455", want: "tt0062455"},
		{url: "https://m.imdb.com/title/tt1375666/?ref_=fn_al_tt_1", want: "tt1375666"},
		{url: "HTTPS://WWW.IMDB.COM/TITLE/TT0133093/", want: "tt0133093"},
		{url: "imdb.com/title/tt10638522/reviews", want: "tt10638522"},
		{url: "https://www.imdb.com/name/nm0000138/", wantErr: true},
		{url: "https://www.imdb.com/title/", wantErr: true},
		{url: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := ParseIMDbID(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeExternalID(t *testing.T) {
	assert.Equal(t, "tt0042", NormalizeExternalID(" TT0042 "))
	assert.Equal(t, "tt0042", NormalizeExternalID("tt0042"))
	assert.Equal(t, "", NormalizeExternalID("   "))
}

func TestFilterByGenre(t *testing.T) {
	movies := []MovieWithVoters{
		{Movie: Movie{ExternalID: "a", Genre: "Action, Sci-Fi"}},
		{Movie: Movie{ExternalID: "b", Genre: "Comedy, Drama"}},
		{Movie: Movie{ExternalID: "c", Genre: "Crime, Drama, Mystery"}},
	}
	ids := func(ms []MovieWithVoters) []string {
		out := make([]string, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.ExternalID)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(FilterByGenre(movies, "")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(FilterByGenre(movies, "All")))
	assert.Equal(t, []string{"b", "c"}, ids(FilterByGenre(movies, "drama")))
	assert.Equal(t, []string{"a"}, ids(FilterByGenre(movies, " SCI ")))
	assert.Empty(t, FilterByGenre(movies, "western"))
}

func TestErrors(t *testing.T) {
	dup := &DuplicateMovieError{Title: "Inception", ExternalID: "tt1375666"}
	assert.ErrorIs(t, dup, ErrDuplicate)
	assert.Equal(t, `movie "Inception" with imdbID tt1375666 already exists`, dup.Error())

	nf := NotFoundf("movie with imdbID %s", "tt1")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, "movie with imdbID tt1: not found", nf.Error())

	assert.False(t, errors.Is(InvalidInputf("x"), ErrNotFound))
}

func FuzzParseIMDbID(f *testing.F) {
	f.Add("https://www.imdb.com/title/tt0062455")
	f.Add("/title/TT1/")
	f.Add("not a url")

	f.Fuzz(func(t *testing.T, raw string) {
		id, err := ParseIMDbID(raw)
		if err != nil {
			return
		}
		if len(id) < 3 || id[:2] != "tt" {
			t.Fatalf("unexpected id %q from %q", id, raw)
		}
		for _, r := range id[2:] {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in id %q", id)
			}
		}
	})
}
