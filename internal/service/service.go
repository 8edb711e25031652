// Package service holds the identity, catalog, ledger and feed operations.
//
// Every operation that takes a user takes the internal user id resolved by
// Identity; nothing here looks up a current user on its own.
package service

import (
	"context"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/metadata"
	"github.com/Clark-Hu/movie-swipe/internal/repository"
)

// Services bundles the operations exposed to transports.
type Services struct {
	Identity  *Identity
	Catalog   *Catalog
	Ledger    *Ledger
	Feed      *Feed
	Suggester *Suggester
}

// New wires all services over one repository. client may be nil when
// suggestion by URL is not needed.
func New(repo *repository.Repository, client metadata.Client) *Services {
	ledger := NewLedger(repo)
	catalog := NewCatalog(repo, ledger)
	return &Services{
		Identity:  NewIdentity(repo),
		Catalog:   catalog,
		Ledger:    ledger,
		Feed:      NewFeed(repo, ledger),
		Suggester: NewSuggester(catalog, client),
	}
}

// enrich attaches voter lists to movies using one batched query on repo.
func enrich(ctx context.Context, repo *repository.Repository, movies []domain.Movie) ([]domain.MovieWithVoters, error) {
	out := make([]domain.MovieWithVoters, 0, len(movies))
	if len(movies) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	voters, err := repo.Likes.Voters(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, m := range movies {
		lists := voters[m.ID]
		out = append(out, domain.MovieWithVoters{
			Movie:      m,
			LikedBy:    nonNil(lists.Liked),
			DislikedBy: nonNil(lists.Disliked),
		})
	}
	return out, nil
}

func nonNil(v []domain.Voter) []domain.Voter {
	if v == nil {
		return []domain.Voter{}
	}
	return v
}
