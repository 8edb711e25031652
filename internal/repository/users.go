package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
)

// UsersRepository persists users keyed by their external platform id.
type UsersRepository struct {
	db DBTX
}

const userColumns = `id, external_id, name, nick, created_at`

// UserCreateParams bundles the fields required to create a user.
type UserCreateParams struct {
	ExternalID string
	Name       string
	Nick       string
}

// Create inserts a user unless one with the same external id exists, in which
// case the stored row is returned untouched and inserted is false.
func (r *UsersRepository) Create(ctx context.Context, params UserCreateParams) (user domain.User, inserted bool, err error) {
	query := fmt.Sprintf(`
        INSERT INTO users (external_id, name, nick)
        VALUES ($1,$2,$3)
        ON CONFLICT (external_id) DO NOTHING
        RETURNING %s
    `, userColumns)

	user, err = scanUser(r.db.QueryRow(ctx, query, params.ExternalID, params.Name, params.Nick))
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, fmt.Errorf("insert user: %w", err)
	}

	user, err = r.GetByExternalID(ctx, params.ExternalID)
	return user, false, err
}

// GetByExternalID fetches a user through the unique external id index.
func (r *UsersRepository) GetByExternalID(ctx context.Context, externalID string) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE external_id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, externalID))
	if err != nil {
		return domain.User{}, translate(err, fmt.Sprintf("user with external id %s", externalID))
	}
	return user, nil
}

// GetByID fetches a user by its internal identifier.
func (r *UsersRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.User{}, translate(err, fmt.Sprintf("user %d", id))
	}
	return user, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Name, &u.Nick, &u.CreatedAt)
	return u, err
}
