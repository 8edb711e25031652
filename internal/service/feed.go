package service

import (
	"context"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/repository"
)

// Feed assembles per-user movie listings.
type Feed struct {
	repo   *repository.Repository
	ledger *Ledger
}

func NewFeed(repo *repository.Repository, ledger *Ledger) *Feed {
	return &Feed{repo: repo, ledger: ledger}
}

// UnratedMovies returns the catalog minus every movie userID has rated with
// either polarity, in catalog order. Catalog and ledger are read from one snapshot.
func (s *Feed) UnratedMovies(ctx context.Context, userID int64) ([]domain.MovieWithVoters, error) {
	var out []domain.MovieWithVoters
	err := s.repo.InReadTx(ctx, func(tx *repository.Repository) error {
		catalog, err := tx.Movies.List(ctx, repository.MovieListFilters{})
		if err != nil {
			return err
		}
		ratings, err := tx.Likes.ListByUser(ctx, userID, nil)
		if err != nil {
			return err
		}

		rated := make(map[int64]struct{}, len(ratings))
		for _, r := range ratings {
			rated[r.MovieID] = struct{}{}
		}
		unrated := make([]domain.Movie, 0, len(catalog))
		for _, m := range catalog {
			if _, ok := rated[m.ID]; !ok {
				unrated = append(unrated, m)
			}
		}

		out, err = enrich(ctx, tx, unrated)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LikedMovies returns every movie userID has liked at least once, in order of
// first like. Later dislikes do not remove a movie from this list.
func (s *Feed) LikedMovies(ctx context.Context, userID int64) ([]domain.MovieWithVoters, error) {
	positive := true
	likes, err := s.repo.Likes.ListByUser(ctx, userID, &positive)
	if err != nil {
		return nil, err
	}
	if len(likes) == 0 {
		return []domain.MovieWithVoters{}, nil
	}

	seen := make(map[int64]struct{}, len(likes))
	ids := make([]int64, 0, len(likes))
	for _, l := range likes {
		if _, ok := seen[l.MovieID]; ok {
			continue
		}
		seen[l.MovieID] = struct{}{}
		ids = append(ids, l.MovieID)
	}

	movies, err := s.repo.Movies.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.ledger.WithVotersAll(ctx, movies)
}
