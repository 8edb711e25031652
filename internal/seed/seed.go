// Package seed loads the starter catalog into an empty deployment.
package seed

import (
	"context"
	"errors"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/service"
)

// Owner identifies the account credited with the starter suggestions.
type Owner struct {
	ExternalID string
	FirstName  string
	LastName   string
	Username   string
}

// DefaultOwner is used when the caller does not name one.
var DefaultOwner = Owner{ExternalID: "seed", FirstName: "Movie", LastName: "Bot", Username: "moviebot"}

// Report summarises a seeding run.
type Report struct {
	Added   int
	Skipped int
}

// Movies returns the starter catalog. Each entry starts with the owner's like only.
func Movies() []domain.NewMovie {
	return []domain.NewMovie{
		{
			ExternalID:  "tt13406094",
			Title:       "The White Lotus",
			Year:        2021,
			Genre:       "Comedy, Drama",
			Description: "The exploits of various guests and employees of a luxury resort over the span of a week.",
			Poster:      "https://m.media-amazon.com/images/M/MV5BZmM1MGM0MDQtZTAzNy00ZGJkLWI4MDUtNjBmMzdhYjhlM2QwXkEyXkFqcGc@._V1_SX300.jpg",
			Rating:      "8.0",
		},
		{
			ExternalID:  "tt1375666",
			Title:       "Inception",
			Year:        2010,
			Genre:       "Action, Adventure, Sci-Fi",
			Description: "A thief who steals corporate secrets through the use of dream-sharing technology is given the inverse task of planting an idea into the mind of a C.E.O., but his tragic past may doom the project and his team to disaster.",
			Poster:      "https://m.media-amazon.com/images/M/MV5BMjAxMzY3NjcxNF5BMl5BanBnXkFtZTcwNTI5OTM0Mw@@._V1_SX300.jpg",
			Rating:      "8.8",
		},
		{
			ExternalID:  "tt0133093",
			Title:       "The Matrix",
			Year:        1999,
			Genre:       "Action, Sci-Fi",
			Description: "When a beautiful stranger leads computer hacker Neo to a forbidding underworld, he discovers the shocking truth--the life he knows is the elaborate deception of an evil cyber-intelligence.",
			Poster:      "https://m.media-amazon.com/images/M/MV5BN2NmN2VhMTQtMDNiOS00NDlhLTliMjgtODE2ZTY0ODQyNDRhXkEyXkFqcGc@._V1_SX300.jpg",
			Rating:      "8.7",
		},
		{
			ExternalID:  "tt10638522",
			Title:       "Talk to Me",
			Year:        2022,
			Genre:       "Horror, Thriller",
			Description: "When a group of friends discover how to conjure spirits using an embalmed hand, they become hooked on the new thrill, until one of them goes too far and unleashes terrifying supernatural forces.",
			Poster:      "https://m.media-amazon.com/images/M/MV5BY2I2NzJmY2YtYTM3Ni00ZGJhLThkZTItODFhMzhlZjZkMDQ5XkEyXkFqcGc@._V1_SX300.jpg",
			Rating:      "7.1",
		},
		{
			ExternalID:  "tt3920596",
			Title:       "Big Little Lies",
			Year:        2017,
			Genre:       "Crime, Drama, Mystery",
			Description: "The apparently-perfect lives of upper-class mothers of students at a prestigious elementary school unravel to the point of murder when a single mother moves to their quaint California beach town.",
			Poster:      "https://m.media-amazon.com/images/M/MV5BY2E3ODNhNWYtYWQ0ZS00ZjdlLTg5NjItMzYwMTlkN2I3YTFjXkEyXkFqcGc@._V1_SX300.jpg",
			Rating:      "8.4",
		},
	}
}

// Run adds every starter movie not yet in the catalog on behalf of owner.
// It is safe to run repeatedly.
func Run(ctx context.Context, svc *service.Services, owner Owner) (Report, error) {
	user, err := svc.Identity.GetOrCreate(ctx, owner.ExternalID, owner.FirstName, owner.LastName, owner.Username)
	if err != nil {
		return Report{}, err
	}

	logger := logging.With("seed")
	var report Report
	for _, m := range Movies() {
		_, err := svc.Catalog.Add(ctx, m, user.ID)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			report.Skipped++
			logger.Debug().Str("imdb_id", m.ExternalID).Msg("already present")
		case err != nil:
			return report, err
		default:
			report.Added++
			logger.Info().Str("imdb_id", m.ExternalID).Str("title", m.Title).Msg("seeded")
		}
	}
	return report, nil
}
