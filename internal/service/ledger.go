package service

import (
	"context"
	"time"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/metrics"
	"github.com/Clark-Hu/movie-swipe/internal/repository"
)

// Ledger records likes and dislikes and keeps the movie counters in step.
type Ledger struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewLedger(repo *repository.Repository) *Ledger {
	return &Ledger{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Record bumps one counter of movieID and appends a matching ledger entry in
// one transaction. Repeated calls append repeated entries.
func (s *Ledger) Record(ctx context.Context, userID, movieID int64, isLike bool) error {
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		return s.record(ctx, tx, userID, movieID, isLike)
	})
	if err != nil {
		return err
	}
	metrics.Vote(isLike)
	logging.Ctx(ctx).Debug().Int64("user_id", userID).Int64("movie_id", movieID).Bool("like", isLike).Msg("vote recorded")
	return nil
}

// RecordByExternalID is Record addressed by IMDb id, compared case-insensitively.
func (s *Ledger) RecordByExternalID(ctx context.Context, externalID string, isLike bool, userID int64) error {
	externalID = domain.NormalizeExternalID(externalID)
	if externalID == "" {
		return domain.InvalidInputf("imdb id is required")
	}
	var movieID int64
	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		movie, err := tx.Movies.GetByExternalID(ctx, externalID)
		if err != nil {
			return err
		}
		movieID = movie.ID
		return s.record(ctx, tx, userID, movie.ID, isLike)
	})
	if err != nil {
		return err
	}
	metrics.Vote(isLike)
	logging.Ctx(ctx).Debug().Int64("user_id", userID).Int64("movie_id", movieID).Bool("like", isLike).Msg("vote recorded")
	return nil
}

func (s *Ledger) record(ctx context.Context, tx *repository.Repository, userID, movieID int64, isLike bool) error {
	if _, err := tx.Movies.IncrementCounts(ctx, movieID, isLike); err != nil {
		return err
	}
	_, err := tx.Likes.Append(ctx, repository.LikeAppendParams{
		UserID:    userID,
		MovieID:   movieID,
		Positive:  isLike,
		CreatedAt: s.now(),
	})
	return err
}

// WithVoters attaches the names of everyone who liked or disliked movie.
func (s *Ledger) WithVoters(ctx context.Context, movie domain.Movie) (domain.MovieWithVoters, error) {
	enriched, err := s.WithVotersAll(ctx, []domain.Movie{movie})
	if err != nil {
		return domain.MovieWithVoters{}, err
	}
	return enriched[0], nil
}

// WithVotersAll is WithVoters for many movies with a single ledger query.
func (s *Ledger) WithVotersAll(ctx context.Context, movies []domain.Movie) ([]domain.MovieWithVoters, error) {
	return enrich(ctx, s.repo, movies)
}

// HasRated reports whether userID has any ledger entry for movieID.
func (s *Ledger) HasRated(ctx context.Context, userID, movieID int64) (bool, error) {
	return s.repo.Likes.Exists(ctx, userID, movieID)
}
