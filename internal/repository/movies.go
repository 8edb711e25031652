package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movie-swipe/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	db DBTX
}

var movieColumnList = []string{
	"id",
	"external_id",
	"title",
	"year",
	"genre",
	"description",
	"poster",
	"rating",
	"likes_count",
	"dislikes_count",
	"suggester_id",
	"created_at",
}

var movieColumns = strings.Join(movieColumnList, ", ")

// MovieCreateParams bundles the fields required to create a movie. Counters
// start at zero and move only through IncrementCounts.
type MovieCreateParams struct {
	domain.NewMovie
	SuggesterID int64
}

// MovieListFilters narrows a catalog listing. Nil fields are ignored.
type MovieListFilters struct {
	Genre       *string
	SuggesterID *int64
}

// Create inserts a new movie row and returns the stored entity. A clash on the
// external id surfaces as domain.ErrDuplicate.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (external_id, title, year, genre, description, poster, rating, suggester_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING %s
    `, movieColumns)

	row := r.db.QueryRow(ctx, query,
		params.ExternalID, params.Title, params.Year, params.Genre, params.Description,
		params.Poster, params.Rating, params.SuggesterID,
	)
	movie, err := scanMovie(row)
	if err != nil {
		return domain.Movie{}, translate(err, fmt.Sprintf("insert movie %s", params.ExternalID))
	}
	return movie, nil
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, translate(err, fmt.Sprintf("movie %d", id))
	}
	return movie, nil
}

// GetByExternalID fetches a movie through the unique external id index.
func (r *MoviesRepository) GetByExternalID(ctx context.Context, externalID string) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE external_id = $1`, movieColumns)
	movie, err := scanMovie(r.db.QueryRow(ctx, query, externalID))
	if err != nil {
		return domain.Movie{}, translate(err, fmt.Sprintf("movie with imdbID %s", externalID))
	}
	return movie, nil
}

// GetByIDs resolves many ids in one round trip. The result follows the order
// of ids; ids without a row are skipped.
func (r *MoviesRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = ANY($1)`, movieColumns)
	found, err := r.collect(ctx, query, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]domain.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out := make([]domain.Movie, 0, len(found))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// List returns the catalog in insertion order, narrowed by filters.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) ([]domain.Movie, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(movieColumnList...).From("movies")

	if filters.SuggesterID != nil {
		sb.Where(sb.Equal("suggester_id", *filters.SuggesterID))
	}
	if filters.Genre != nil {
		if g := strings.TrimSpace(*filters.Genre); g != "" && !strings.EqualFold(g, "all") {
			sb.Where("strpos(lower(genre), lower(" + sb.Var(g) + ")) > 0")
		}
	}
	sb.OrderBy("id").Asc()

	query, args := sb.Build()
	return r.collect(ctx, query, args...)
}

// IncrementCounts bumps exactly one of the aggregate counters by one.
func (r *MoviesRepository) IncrementCounts(ctx context.Context, id int64, like bool) (domain.Movie, error) {
	column := "dislikes_count"
	if like {
		column = "likes_count"
	}
	query := fmt.Sprintf(`
        UPDATE movies
        SET %[1]s = %[1]s + 1
        WHERE id = $1
        RETURNING %[2]s
    `, column, movieColumns)

	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, translate(err, fmt.Sprintf("movie %d", id))
	}
	return movie, nil
}

func (r *MoviesRepository) collect(ctx context.Context, query string, args ...any) ([]domain.Movie, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	results := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.ExternalID,
		&movie.Title,
		&movie.Year,
		&movie.Genre,
		&movie.Description,
		&movie.Poster,
		&movie.Rating,
		&movie.LikesCount,
		&movie.DislikesCount,
		&movie.SuggesterID,
		&movie.CreatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
