package service

import (
	"context"
	"strings"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/metrics"
	"github.com/Clark-Hu/movie-swipe/internal/repository"
)

// Identity maps chat-platform identities onto internal users.
type Identity struct {
	repo *repository.Repository
}

func NewIdentity(repo *repository.Repository) *Identity {
	return &Identity{repo: repo}
}

// GetOrCreate returns the user for externalID, creating it on first contact.
// An existing user is returned as stored; later name changes are not applied.
func (s *Identity) GetOrCreate(ctx context.Context, externalID, firstName, lastName, username string) (domain.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return domain.User{}, domain.InvalidInputf("external id is required")
	}

	existing, err := s.repo.Users.GetByExternalID(ctx, externalID)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		return domain.User{}, err
	}

	name := domain.DisplayName(firstName, lastName)
	user, inserted, err := s.repo.Users.Create(ctx, repository.UserCreateParams{
		ExternalID: externalID,
		Name:       name,
		Nick:       domain.Nickname(strings.TrimSpace(username), name),
	})
	if err != nil {
		return domain.User{}, err
	}
	if inserted {
		metrics.UsersCreated.Inc()
		logging.Ctx(ctx).Info().Int64("user_id", user.ID).Str("nick", user.Nick).Msg("user created")
	}
	return user, nil
}

// Lookup finds a user by external id without creating one.
func (s *Identity) Lookup(ctx context.Context, externalID string) (domain.User, error) {
	if strings.TrimSpace(externalID) == "" {
		return domain.User{}, domain.InvalidInputf("external id is required")
	}
	return s.repo.Users.GetByExternalID(ctx, externalID)
}

// Get finds a user by internal id.
func (s *Identity) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.repo.Users.GetByID(ctx, id)
}
