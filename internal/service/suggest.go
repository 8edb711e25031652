package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/metadata"
)

// Suggester adds movies to the catalog from an IMDb link.
type Suggester struct {
	catalog *Catalog
	client  metadata.Client
}

func NewSuggester(catalog *Catalog, client metadata.Client) *Suggester {
	return &Suggester{catalog: catalog, client: client}
}

// SuggestFromURL parses the IMDb id out of rawURL, looks the title up and adds
// it on behalf of userID, who counts as its first like.
func (s *Suggester) SuggestFromURL(ctx context.Context, rawURL string, userID int64) (domain.Movie, error) {
	imdbID, err := domain.ParseIMDbID(rawURL)
	if err != nil {
		return domain.Movie{}, err
	}
	if s.client == nil {
		return domain.Movie{}, fmt.Errorf("metadata lookup not configured: %w", domain.ErrUpstream)
	}

	result, err := s.client.Lookup(ctx, imdbID)
	switch {
	case errors.Is(err, metadata.ErrNotFound):
		return domain.Movie{}, domain.InvalidInputf("no movie found for %s (%v)", imdbID, err)
	case err != nil:
		logging.Ctx(ctx).Warn().Err(err).Str("imdb_id", imdbID).Msg("metadata lookup failed")
		return domain.Movie{}, fmt.Errorf("lookup %s: %w: %w", imdbID, domain.ErrUpstream, err)
	}

	id, err := s.catalog.Add(ctx, result.NewMovie(), userID)
	if err != nil {
		return domain.Movie{}, err
	}
	return s.catalog.repo.Movies.GetByID(ctx, id)
}
