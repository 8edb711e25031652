package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/metrics"
	"github.com/Clark-Hu/movie-swipe/internal/repository"
)

// Catalog manages the shared movie list.
type Catalog struct {
	repo   *repository.Repository
	ledger *Ledger
}

func NewCatalog(repo *repository.Repository, ledger *Ledger) *Catalog {
	return &Catalog{repo: repo, ledger: ledger}
}

// LookupByExternalID returns the movie with the given IMDb id, compared case-insensitively.
func (s *Catalog) LookupByExternalID(ctx context.Context, externalID string) (domain.Movie, error) {
	externalID = domain.NormalizeExternalID(externalID)
	if externalID == "" {
		return domain.Movie{}, domain.InvalidInputf("imdb id is required")
	}
	return s.repo.Movies.GetByExternalID(ctx, externalID)
}

// Add inserts a movie and the suggester's like atomically, leaving it with
// likes 1 and dislikes 0. A movie whose external id is already present yields
// a *domain.DuplicateMovieError and changes nothing.
func (s *Catalog) Add(ctx context.Context, movie domain.NewMovie, suggesterID int64) (int64, error) {
	movie.ExternalID = domain.NormalizeExternalID(movie.ExternalID)
	if err := validateNewMovie(movie); err != nil {
		return 0, err
	}

	var id int64
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.Movies.GetByExternalID(ctx, movie.ExternalID); err == nil {
			return &domain.DuplicateMovieError{Title: movie.Title, ExternalID: movie.ExternalID}
		} else if !isNotFound(err) {
			return err
		}

		created, err := tx.Movies.Create(ctx, repository.MovieCreateParams{NewMovie: movie, SuggesterID: suggesterID})
		if err != nil {
			return err
		}
		if err := s.ledger.record(ctx, tx, suggesterID, created.ID, true); err != nil {
			return err
		}
		id = created.ID
		return nil
	})

	var dup *domain.DuplicateMovieError
	switch {
	case errors.As(err, &dup):
		metrics.DuplicateSuggestions.Inc()
		return 0, err
	case errors.Is(err, domain.ErrDuplicate):
		// lost a race with a concurrent insert of the same id
		metrics.DuplicateSuggestions.Inc()
		return 0, &domain.DuplicateMovieError{Title: movie.Title, ExternalID: movie.ExternalID}
	case err != nil:
		return 0, err
	}

	metrics.MoviesSuggested.Inc()
	logging.Ctx(ctx).Info().
		Int64("movie_id", id).
		Str("imdb_id", movie.ExternalID).
		Int64("suggester_id", suggesterID).
		Msg("movie added")
	return id, nil
}

// ListByUser returns the movies suggested by userID in insertion order.
func (s *Catalog) ListByUser(ctx context.Context, userID int64) ([]domain.MovieWithVoters, error) {
	movies, err := s.repo.Movies.List(ctx, repository.MovieListFilters{SuggesterID: &userID})
	if err != nil {
		return nil, err
	}
	return s.ledger.WithVotersAll(ctx, movies)
}

// List returns the whole catalog, optionally narrowed to a genre.
func (s *Catalog) List(ctx context.Context, genre string) ([]domain.MovieWithVoters, error) {
	movies, err := s.repo.Movies.List(ctx, repository.MovieListFilters{Genre: &genre})
	if err != nil {
		return nil, err
	}
	return s.ledger.WithVotersAll(ctx, movies)
}

func validateNewMovie(m domain.NewMovie) error {
	switch {
	case m.ExternalID == "":
		return domain.InvalidInputf("imdb id is required")
	case strings.TrimSpace(m.Title) == "":
		return domain.InvalidInputf("title is required")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
