package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inceptionJSON = `{"Title":"Inception","Year":"2010","Genre":"Action, Adventure, Sci-Fi",
"Plot":"A thief who steals corporate secrets.","Poster":"https://example.com/inception.jpg",
"imdbRating":"8.8","imdbID":"tt1375666","Response":"True"}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewHTTPClient(srv.URL, "secret", time.Second)
	require.NoError(t, err)
	return client
}

func TestHTTPClient_Lookup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tt1375666", r.URL.Query().Get("i"))
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(inceptionJSON))
	})

	result, err := client.Lookup(context.Background(), "tt1375666")
	require.NoError(t, err)
	assert.Equal(t, &Result{
		ExternalID:  "tt1375666",
		Title:       "Inception",
		Year:        2010,
		Genre:       "Action, Adventure, Sci-Fi",
		Description: "A thief who steals corporate secrets.",
		Poster:      "https://example.com/inception.jpg",
		Rating:      "8.8",
	}, result)

	movie := result.NewMovie()
	assert.Equal(t, "tt1375666", movie.ExternalID)
	assert.Equal(t, "Inception", movie.Title)
}

func TestHTTPClient_LookupNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "response false",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
			},
		},
		{
			name: "status 404",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Lookup(context.Background(), "tt0000000")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestHTTPClient_UpstreamFailureOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := client.Lookup(context.Background(), "tt1375666")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNotFound))
	}

	_, err := client.Lookup(context.Background(), "tt1375666")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}

func TestHTTPClient_NotFoundKeepsBreakerClosed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	})

	for i := 0; i < 10; i++ {
		_, err := client.Lookup(context.Background(), "tt0000000")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, client.breaker.State())
}

func TestNewHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPClient("omdb.local", "key", time.Second)
	assert.Error(t, err)
}

func TestConvertToResult(t *testing.T) {
	tests := []struct {
		name    string
		payload apiResponse
		want    *Result
		wantErr bool
	}{
		{
			name:    "series year range and N/A fields",
			payload: apiResponse{Response: "True", IMDbID: "TT3920596", Title: "Big Little Lies", Year: "2017–2019", Genre: "Crime, Drama", Poster: "N/A", IMDbRating: "N/A"},
			want:    &Result{ExternalID: "tt3920596", Title: "Big Little Lies", Year: 2017, Genre: "Crime, Drama"},
		},
		{
			name:    "missing id falls back to requested",
			payload: apiResponse{Response: "True", Title: "Talk to Me", Year: "2022"},
			want:    &Result{ExternalID: "tt0000001", Title: "Talk to Me", Year: 2022},
		},
		{
			name:    "missing title",
			payload: apiResponse{Response: "True", IMDbID: "tt0000001"},
			wantErr: true,
		},
		{
			name:    "upstream error",
			payload: apiResponse{Response: "False", Error: "Movie not found!"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertToResult("tt0000001", tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
