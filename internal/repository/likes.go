package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
)

// LikesRepository is the append-only rating ledger.
type LikesRepository struct {
	db DBTX
}

const likeColumns = `id, user_id, movie_id, positive, created_at`

// LikeAppendParams captures one ledger entry.
type LikeAppendParams struct {
	UserID    int64
	MovieID   int64
	Positive  bool
	CreatedAt time.Time
}

// VoterLists holds the names of a movie's voters split by polarity, in ledger order.
type VoterLists struct {
	Liked    []domain.Voter
	Disliked []domain.Voter
}

// Append adds a ledger entry. Entries are never updated or removed.
func (r *LikesRepository) Append(ctx context.Context, params LikeAppendParams) (domain.Rating, error) {
	var createdAt *time.Time
	if !params.CreatedAt.IsZero() {
		createdAt = &params.CreatedAt
	}

	query := fmt.Sprintf(`
        INSERT INTO likes (user_id, movie_id, positive, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING %s
    `, likeColumns)

	rating, err := scanRating(r.db.QueryRow(ctx, query, params.UserID, params.MovieID, params.Positive, createdAt))
	if err != nil {
		return domain.Rating{}, translate(err, fmt.Sprintf("append rating for movie %d", params.MovieID))
	}
	return rating, nil
}

// ListByUser returns a user's entries in ledger order. A nil positive returns both polarities.
func (r *LikesRepository) ListByUser(ctx context.Context, userID int64, positive *bool) ([]domain.Rating, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if positive == nil {
		rows, err = r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM likes WHERE user_id = $1 ORDER BY id`, likeColumns), userID)
	} else {
		rows, err = r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM likes WHERE user_id = $1 AND positive = $2 ORDER BY id`, likeColumns), userID, *positive)
	}
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	results := make([]domain.Rating, 0)
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Exists reports whether the user has at least one entry for the movie.
func (r *LikesRepository) Exists(ctx context.Context, userID, movieID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM likes WHERE user_id = $1 AND movie_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, movieID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check rating: %w", err)
	}
	return exists, nil
}

// Voters resolves the voter names for every movie in movieIDs. Entries whose
// user no longer resolves are dropped by the join.
func (r *LikesRepository) Voters(ctx context.Context, movieIDs []int64) (map[int64]VoterLists, error) {
	out := make(map[int64]VoterLists, len(movieIDs))
	if len(movieIDs) == 0 {
		return out, nil
	}

	const query = `
        SELECT l.movie_id, l.positive, u.name
        FROM likes l
        JOIN users u ON u.id = l.user_id
        WHERE l.movie_id = ANY($1)
        ORDER BY l.id
    `
	rows, err := r.db.Query(ctx, query, movieIDs)
	if err != nil {
		return nil, fmt.Errorf("query voters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			movieID  int64
			positive bool
			name     string
		)
		if err := rows.Scan(&movieID, &positive, &name); err != nil {
			return nil, err
		}
		lists := out[movieID]
		if positive {
			lists.Liked = append(lists.Liked, domain.Voter{Name: name})
		} else {
			lists.Disliked = append(lists.Disliked, domain.Voter{Name: name})
		}
		out[movieID] = lists
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(&rating.ID, &rating.UserID, &rating.MovieID, &rating.Positive, &rating.CreatedAt)
	return rating, err
}
